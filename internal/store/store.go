// Package store persists holdings and calculation history in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store provides SQLite-backed persistence.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddInvestment inserts a holding. A zero ID or CreatedAt is filled in.
func (s *Store) AddInvestment(inv model.Investment) (model.Investment, error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`INSERT INTO investments
		(id, name, type, invested_amount, current_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), inv.Name, string(inv.Type),
		inv.InvestedAmount.String(), inv.CurrentValue.String(),
		inv.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return inv, fmt.Errorf("inserting investment: %w", err)
	}
	return inv, nil
}

// ListInvestments returns all holdings, oldest first.
func (s *Store) ListInvestments() ([]model.Investment, error) {
	rows, err := s.db.Query(`SELECT id, name, type, invested_amount, current_value, created_at
		FROM investments ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var invs []model.Investment
	for rows.Next() {
		var inv model.Investment
		var id, typ, invested, current, created string
		if err := rows.Scan(&id, &inv.Name, &typ, &invested, &current, &created); err != nil {
			return nil, err
		}
		if inv.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("investment id %q: %w", id, err)
		}
		if inv.InvestedAmount, err = decimal.NewFromString(invested); err != nil {
			return nil, fmt.Errorf("investment %s invested amount: %w", id, err)
		}
		if inv.CurrentValue, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("investment %s current value: %w", id, err)
		}
		inv.Type = model.InvestmentType(typ)
		inv.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// UpdateCurrentValue sets a holding's current value.
func (s *Store) UpdateCurrentValue(id uuid.UUID, value decimal.Decimal) error {
	res, err := s.db.Exec("UPDATE investments SET current_value = ? WHERE id = ?", value.String(), id.String())
	if err != nil {
		return err
	}
	return requireRow(res, "investment", id)
}

// DeleteInvestment removes a holding.
func (s *Store) DeleteInvestment(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM investments WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	return requireRow(res, "investment", id)
}

// SaveCalculation records a calculator run. input and result are stored as JSON.
func (s *Store) SaveCalculation(kind model.CalculationKind, input, result any) (model.Calculation, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return model.Calculation{}, fmt.Errorf("encoding input: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return model.Calculation{}, fmt.Errorf("encoding result: %w", err)
	}

	c := model.Calculation{
		ID:        uuid.New(),
		Kind:      kind,
		Input:     in,
		Result:    out,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.Exec(`INSERT INTO calculations (id, kind, input_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), string(c.Kind), string(in), string(out), c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Calculation{}, fmt.Errorf("inserting calculation: %w", err)
	}
	return c, nil
}

// RecentCalculations returns up to limit records, newest first. An empty kind
// matches every calculator.
func (s *Store) RecentCalculations(kind model.CalculationKind, limit int) ([]model.Calculation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, kind, input_json, result_json, created_at
		FROM calculations
		WHERE ? = '' OR kind = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, string(kind), string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var calcs []model.Calculation
	for rows.Next() {
		var c model.Calculation
		var id, kindStr, in, out, created string
		if err := rows.Scan(&id, &kindStr, &in, &out, &created); err != nil {
			return nil, err
		}
		c.ID, _ = uuid.Parse(id)
		c.Kind = model.CalculationKind(kindStr)
		c.Input = json.RawMessage(in)
		c.Result = json.RawMessage(out)
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		calcs = append(calcs, c)
	}
	return calcs, rows.Err()
}

// ClearCalculations deletes the whole history and reports how many rows went.
func (s *Store) ClearCalculations() (int64, error) {
	res, err := s.db.Exec("DELETE FROM calculations")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result, what string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

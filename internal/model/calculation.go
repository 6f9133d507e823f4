package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CalculationKind names the calculator that produced a record.
type CalculationKind string

const (
	KindGoal    CalculationKind = "goal"
	KindSIP     CalculationKind = "sip"
	KindStepUp  CalculationKind = "stepup"
	KindLumpSum CalculationKind = "lumpsum"
	KindRD      CalculationKind = "rd"
	KindCompare CalculationKind = "compare"
)

// Calculation is a saved calculator run. Input and Result hold the JSON the
// calculator was called with and returned.
type Calculation struct {
	ID        uuid.UUID       `json:"id"`
	Kind      CalculationKind `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

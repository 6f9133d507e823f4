package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/finplan/internal/cache"
	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/solver"
)

const maxBodyBytes = 64 << 10

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest   = "bad_request"
	CodeInvalidInput = "invalid_input"
	CodeOutOfRange   = "out_of_range"
	CodeInternal     = "internal"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// goalCacheInput keys goal results by the solver settings as well as the
// request, since tolerance and budget change the answer.
type goalCacheInput struct {
	Input  any            `json:"input"`
	Solver solver.Options `json:"solver"`
}

func (s *Service) cacheKey(kind model.CalculationKind, in any) (string, error) {
	if kind == model.KindGoal {
		in = goalCacheInput{Input: in, Solver: s.cfg.SolverOptions}
	}
	return cache.Key(string(kind), in)
}

// calcHandler decodes In, consults the cache, runs fn, and records the
// outcome. Successful results are cached and saved to history.
func calcHandler[In, Out any](s *Service, kind model.CalculationKind, fn func(In) (Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		start := time.Now()

		var in In
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			s.record(kind, false, CodeBadRequest, time.Since(start))
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
			return
		}

		key, keyErr := s.cacheKey(kind, in)
		if keyErr == nil {
			if hit, ok := s.cache.Get(r.Context(), key); ok {
				s.record(kind, true, "", time.Since(start))
				w.Header().Set("X-Cache", "hit")
				writeRaw(w, http.StatusOK, []byte(hit))
				return
			}
		}

		out, err := fn(in)
		if err != nil {
			status, code := classify(err)
			if code == CodeInternal {
				s.log.Error("calculation failed", "kind", kind, "err", err)
			}
			s.record(kind, false, code, time.Since(start))
			writeError(w, status, code, err.Error())
			return
		}

		body, err := json.Marshal(out)
		if err != nil {
			s.record(kind, false, CodeInternal, time.Since(start))
			writeError(w, http.StatusInternalServerError, CodeInternal, "encoding result failed")
			return
		}

		if keyErr == nil {
			if err := s.cache.Set(r.Context(), key, string(body), s.cfg.CacheTTL); err != nil {
				s.log.Warn("cache write failed", "kind", kind, "err", err)
			}
		}
		if s.history != nil {
			if _, err := s.history.SaveCalculation(kind, in, json.RawMessage(body)); err != nil {
				s.log.Warn("history write failed", "kind", kind, "err", err)
			}
		}

		s.record(kind, false, "", time.Since(start))
		s.log.Debug("calculation served", "kind", kind, "took", time.Since(start))
		w.Header().Set("X-Cache", "miss")
		writeRaw(w, http.StatusOK, body)
	})
}

// classify maps calculator errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, solver.ErrOutOfRange):
		return http.StatusUnprocessableEntity, CodeOutOfRange
	case errors.Is(err, calc.ErrInvalidInput), errors.Is(err, solver.ErrInvalidInput):
		return http.StatusUnprocessableEntity, CodeInvalidInput
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Service) handlePresets(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, calc.GoalPresets)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, []model.Calculation{})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	kind := model.CalculationKind(r.URL.Query().Get("kind"))

	calcs, err := s.history.RecentCalculations(kind, limit)
	if err != nil {
		s.log.Error("history read failed", "err", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "reading history failed")
		return
	}
	if calcs == nil {
		calcs = []model.Calculation{}
	}
	writeJSON(w, http.StatusOK, calcs)
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/finplan/internal/cache"
	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/solver"
)

type memHistory struct {
	mu    sync.Mutex
	saved []model.Calculation
}

func (h *memHistory) SaveCalculation(kind model.CalculationKind, input, result any) (model.Calculation, error) {
	in, _ := json.Marshal(input)
	out, _ := json.Marshal(result)
	c := model.Calculation{Kind: kind, Input: in, Result: out, CreatedAt: time.Now()}
	h.mu.Lock()
	h.saved = append(h.saved, c)
	h.mu.Unlock()
	return c, nil
}

func (h *memHistory) RecentCalculations(kind model.CalculationKind, limit int) ([]model.Calculation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []model.Calculation
	for i := len(h.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if kind == "" || h.saved[i].Kind == kind {
			out = append(out, h.saved[i])
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, cfg Config, hist History) (*Service, *httptest.Server) {
	t.Helper()
	s := New(cfg, Deps{History: hist})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, Deps{})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestGoalEndpoint(t *testing.T) {
	hist := &memHistory{}
	_, srv := newTestServer(t, Config{}, hist)

	body := `{"target":10000000,"years":15,"annual_return_pct":12,"step_up_pct":10}`
	resp := post(t, srv.URL+"/v1/goal", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Cache") != "miss" {
		t.Fatalf("X-Cache = %q, want miss", resp.Header.Get("X-Cache"))
	}

	var res calc.GoalResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.StepUpMonthly.LessThan(res.RequiredMonthly) {
		t.Fatalf("step-up %s should start below flat %s", res.StepUpMonthly, res.RequiredMonthly)
	}

	again := post(t, srv.URL+"/v1/goal", body)
	if again.Header.Get("X-Cache") != "hit" {
		t.Fatalf("second call X-Cache = %q, want hit", again.Header.Get("X-Cache"))
	}

	hist.mu.Lock()
	saved := len(hist.saved)
	hist.mu.Unlock()
	if saved != 1 {
		t.Fatalf("history saved %d records, want 1 (cache hits are not re-recorded)", saved)
	}
}

func TestGoalCacheKeyedBySolverOptions(t *testing.T) {
	shared := cache.NewMemory()
	body := `{"target":10000000,"years":15,"annual_return_pct":12,"step_up_pct":10}`

	loose := New(Config{SolverOptions: solver.Options{Tolerance: 100}}, Deps{Cache: shared})
	looseSrv := httptest.NewServer(loose.Handler())
	t.Cleanup(looseSrv.Close)

	tight := New(Config{SolverOptions: solver.Options{Tolerance: 0.01, MaxIterations: 200}}, Deps{Cache: shared})
	tightSrv := httptest.NewServer(tight.Handler())
	t.Cleanup(tightSrv.Close)

	if got := post(t, looseSrv.URL+"/v1/goal", body).Header.Get("X-Cache"); got != "miss" {
		t.Fatalf("first daemon X-Cache = %q, want miss", got)
	}
	if got := post(t, tightSrv.URL+"/v1/goal", body).Header.Get("X-Cache"); got != "miss" {
		t.Fatalf("daemon with other solver settings X-Cache = %q, want miss", got)
	}
	if got := post(t, tightSrv.URL+"/v1/goal", body).Header.Get("X-Cache"); got != "hit" {
		t.Fatalf("repeat on same daemon X-Cache = %q, want hit", got)
	}

	// Other calculators do not depend on solver settings and share entries.
	sip := `{"monthly":10000,"years":10,"annual_return_pct":12}`
	post(t, looseSrv.URL+"/v1/sip", sip)
	if got := post(t, tightSrv.URL+"/v1/sip", sip).Header.Get("X-Cache"); got != "hit" {
		t.Fatalf("sip across daemons X-Cache = %q, want hit", got)
	}
}

func TestMemoryCacheIsSwept(t *testing.T) {
	var c any = cache.NewMemory()
	if _, ok := c.(cacheSweeper); !ok {
		t.Fatal("memory cache is not swept by Run")
	}
}

func TestCalculatorEndpoints(t *testing.T) {
	_, srv := newTestServer(t, Config{}, nil)

	tests := []struct {
		path string
		body string
	}{
		{"/v1/sip", `{"monthly":5000,"years":10,"annual_return_pct":12,"inflation_pct":6}`},
		{"/v1/stepup", `{"monthly":5000,"years":10,"annual_return_pct":12,"step_up_pct":10}`},
		{"/v1/lumpsum", `{"principal":100000,"years":10,"annual_return_pct":12}`},
		{"/v1/rd", `{"monthly_deposit":1000,"annual_rate_pct":7,"years":5,"compounding":"quarterly"}`},
		{"/v1/compare", `{"monthly":10000,"years":10,"annual_return_pct":12}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	_, srv := newTestServer(t, Config{}, nil)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bad json", "/v1/goal", `{"target":`, http.StatusBadRequest, CodeBadRequest},
		{"unknown field", "/v1/sip", `{"monthly":1,"years":1,"colour":"red"}`, http.StatusBadRequest, CodeBadRequest},
		{"validation", "/v1/goal", `{"target":-5,"years":10}`, http.StatusUnprocessableEntity, CodeInvalidInput},
		{"bad compounding", "/v1/rd", `{"monthly_deposit":1,"years":1,"compounding":"daily"}`, http.StatusUnprocessableEntity, CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var er ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if er.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", er.Code, tt.wantCode)
			}
		})
	}
}

func TestOutOfRangeMapping(t *testing.T) {
	_, srv := newTestServer(t, Config{SolverOptions: solver.Options{Tolerance: 1e-9, MaxIterations: 2}}, nil)

	resp := post(t, srv.URL+"/v1/goal", `{"target":10000000,"years":15,"annual_return_pct":12,"step_up_pct":10}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var er ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&er)
	if er.Code != CodeOutOfRange {
		t.Fatalf("code = %q, want %q", er.Code, CodeOutOfRange)
	}
}

func TestClassify(t *testing.T) {
	if _, code := classify(fmt.Errorf("x: %w", solver.ErrOutOfRange)); code != CodeOutOfRange {
		t.Fatalf("out of range code = %q", code)
	}
	if _, code := classify(errors.New("boom")); code != CodeInternal {
		t.Fatalf("generic code = %q", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t, Config{}, nil)

	resp, err := http.Get(srv.URL + "/v1/goal")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
	if resp.Header.Get("Allow") != http.MethodPost {
		t.Fatalf("Allow = %q", resp.Header.Get("Allow"))
	}
}

func TestRateLimit(t *testing.T) {
	_, srv := newTestServer(t, Config{RateLimit: 2, RateWindow: time.Hour}, nil)

	body := `{"principal":1000,"years":1,"annual_return_pct":5}`
	for i := 0; i < 2; i++ {
		if resp := post(t, srv.URL+"/v1/lumpsum", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	if resp := post(t, srv.URL+"/v1/lumpsum", body); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d while limited", resp.StatusCode)
	}
}

func TestRateLimiterRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") {
		t.Fatal("first request denied")
	}
	if rl.Allow("a") {
		t.Fatal("second request allowed before refill")
	}
	if !rl.Allow("b") {
		t.Fatal("other client denied")
	}
	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("request denied after refill")
	}
}

func TestStatusAndEvents(t *testing.T) {
	_, srv := newTestServer(t, Config{}, nil)

	post(t, srv.URL+"/v1/lumpsum", `{"principal":1000,"years":1,"annual_return_pct":5}`)
	post(t, srv.URL+"/v1/lumpsum", `{"principal":1000,"years":1,"annual_return_pct":5}`)
	post(t, srv.URL+"/v1/sip", `{"monthly":0,"years":1}`)

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Totals.Requests != 3 || st.Totals.CacheHits != 1 || st.Totals.Errors != 1 {
		t.Fatalf("totals = %+v, want 3 requests, 1 hit, 1 error", st.Totals)
	}
	if st.ByKind[model.KindLumpSum] != 2 || st.CacheBackend != "memory" {
		t.Fatalf("status = %+v", st)
	}

	evResp, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer func() { _ = evResp.Body.Close() }()

	var events []Event
	if err := json.NewDecoder(evResp.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if !events[1].Cached || events[2].Code != CodeInvalidInput {
		t.Fatalf("events = %+v", events)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &memHistory{}
	_, srv := newTestServer(t, Config{}, hist)

	post(t, srv.URL+"/v1/lumpsum", `{"principal":1000,"years":1,"annual_return_pct":5}`)
	post(t, srv.URL+"/v1/lumpsum", `{"principal":2000,"years":1,"annual_return_pct":5}`)

	resp, err := http.Get(srv.URL + "/v1/history?limit=1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var calcs []model.Calculation
	if err := json.NewDecoder(resp.Body).Decode(&calcs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(calcs) != 1 || !strings.Contains(string(calcs[0].Input), "2000") {
		t.Fatalf("history = %+v", calcs)
	}

	bad, err := http.Get(srv.URL + "/v1/history?limit=zero")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	_ = bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", bad.StatusCode)
	}
}

func TestStream(t *testing.T) {
	_, srv := newTestServer(t, Config{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rd := bufio.NewReader(resp.Body)
	if got := readEventType(t, rd); got != "snapshot" {
		t.Fatalf("first event = %q, want snapshot", got)
	}

	post(t, srv.URL+"/v1/lumpsum", `{"principal":1000,"years":1,"annual_return_pct":5}`)

	if got := readEventType(t, rd); got != "calculation" {
		t.Fatalf("second event = %q, want calculation", got)
	}
}

func readEventType(t *testing.T, rd *bufio.Reader) string {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if typ, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
			return typ
		}
	}
}

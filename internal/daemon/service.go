// Package daemon serves the calculators over a local HTTP API with an event
// feed of recent calculations.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/finplan/internal/cache"
	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/solver"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr          string
	EventsBuffer  int
	RateLimit     int // requests per window per client; 0 disables limiting
	RateWindow    time.Duration
	CacheTTL      time.Duration
	SolverOptions solver.Options
	KeepAlive     time.Duration
}

// History records calculations. *store.Store satisfies it.
type History interface {
	SaveCalculation(kind model.CalculationKind, input, result any) (model.Calculation, error)
	RecentCalculations(kind model.CalculationKind, limit int) ([]model.Calculation, error)
}

// Deps are the collaborators the service uses. Cache defaults to an in-memory
// cache; History and Logger are optional.
type Deps struct {
	Cache        cache.Cache
	CacheBackend string
	History      History
	Logger       *slog.Logger
}

// Counters are the running request totals.
type Counters struct {
	Requests  int64 `json:"requests"`
	CacheHits int64 `json:"cache_hits"`
	Errors    int64 `json:"errors"`
}

// Event is emitted for every calculation served.
type Event struct {
	ID         int64                 `json:"id"`
	Type       string                `json:"type"`
	Timestamp  time.Time             `json:"timestamp"`
	Kind       model.CalculationKind `json:"kind,omitempty"`
	Cached     bool                  `json:"cached,omitempty"`
	Code       string                `json:"code,omitempty"`
	DurationMS float64               `json:"duration_ms,omitempty"`
	Totals     Counters              `json:"totals"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time                       `json:"started_at"`
	Addr            string                          `json:"addr"`
	LastCalcAt      time.Time                       `json:"last_calc_at"`
	Totals          Counters                        `json:"totals"`
	ByKind          map[model.CalculationKind]int64 `json:"by_kind"`
	CacheBackend    string                          `json:"cache_backend"`
	HistoryEnabled  bool                            `json:"history_enabled"`
	RateLimit       int                             `json:"rate_limit"`
	RateWindowSec   int                             `json:"rate_window_sec"`
	EventCount      int                             `json:"event_count"`
	SubscriberCount int                             `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	cache   cache.Cache
	backend string
	history History
	log     *slog.Logger
	limiter *RateLimiter

	mu          sync.RWMutex
	startedAt   time.Time
	lastCalcAt  time.Time
	totals      Counters
	byKind      map[model.CalculationKind]int64
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// cacheSweepInterval is how often an in-process cache drops expired results.
const cacheSweepInterval = time.Minute

// cacheSweeper is a cache that must be swept to free expired entries.
type cacheSweeper interface {
	CleanupLoop(ctx context.Context, interval time.Duration)
}

// New returns a new daemon service with the provided config.
func New(cfg Config, deps Deps) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 15 * time.Second
	}

	s := &Service{
		cfg:       cfg,
		cache:     deps.Cache,
		backend:   deps.CacheBackend,
		history:   deps.History,
		log:       deps.Logger,
		startedAt: time.Now(),
		byKind:    make(map[model.CalculationKind]int64),
		subs:      make(map[int]chan Event),
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
		s.backend = "memory"
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	return s
}

// Handler returns the API routes, rate limited when configured.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/presets", s.handlePresets)
	mux.HandleFunc("/v1/history", s.handleHistory)

	mux.Handle("/v1/goal", calcHandler(s, model.KindGoal, func(in calc.GoalInput) (calc.GoalResult, error) {
		return calc.GoalWithOptions(in, s.cfg.SolverOptions)
	}))
	mux.Handle("/v1/sip", calcHandler(s, model.KindSIP, calc.SIP))
	mux.Handle("/v1/stepup", calcHandler(s, model.KindStepUp, calc.StepUpSIP))
	mux.Handle("/v1/lumpsum", calcHandler(s, model.KindLumpSum, calc.LumpSum))
	mux.Handle("/v1/rd", calcHandler(s, model.KindRD, calc.RD))
	mux.Handle("/v1/compare", calcHandler(s, model.KindCompare, calc.Compare))

	if s.limiter == nil {
		return mux
	}
	return RateLimitMiddleware(s.limiter, mux)
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.CleanupLoop(ctx)
	}
	if c, ok := s.cache.(cacheSweeper); ok {
		go c.CleanupLoop(ctx, cacheSweepInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("daemon listening", "addr", s.cfg.Addr, "cache", s.backend, "history", s.history != nil)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("daemon shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// record updates counters and publishes one calculation event.
func (s *Service) record(kind model.CalculationKind, cached bool, code string, took time.Duration) {
	now := time.Now()

	s.mu.Lock()
	s.totals.Requests++
	if cached {
		s.totals.CacheHits++
	}
	if code != "" {
		s.totals.Errors++
	}
	s.byKind[kind]++
	s.lastCalcAt = now
	s.nextEventID++
	ev := Event{
		ID:         s.nextEventID,
		Type:       "calculation",
		Timestamp:  now,
		Kind:       kind,
		Cached:     cached,
		Code:       code,
		DurationMS: float64(took.Microseconds()) / 1000,
		Totals:     s.totals,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKind := make(map[model.CalculationKind]int64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}

	st := Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		LastCalcAt:      s.lastCalcAt,
		Totals:          s.totals,
		ByKind:          byKind,
		CacheBackend:    s.backend,
		HistoryEnabled:  s.history != nil,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.limiter != nil {
		st.RateLimit = s.cfg.RateLimit
		st.RateWindowSec = int(s.cfg.RateWindow.Seconds())
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current totals immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Totals:    s.snapshotStatus().Totals,
	}
	writeSSE(w, current)
	flusher.Flush()

	ping := time.NewTicker(s.cfg.KeepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		case <-ping.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

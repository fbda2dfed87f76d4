// Package daemon provides the long-running exchange-rate refresher and its
// local HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/currency"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/store"
)

// Fetcher retrieves a fresh rate table.
type Fetcher interface {
	FetchLatest(ctx context.Context, base string) (*rates.Snapshot, error)
}

// RateStore persists fetched tables.
type RateStore interface {
	SaveRates(snap store.RateSnapshot) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	Base         string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	// MinChangePct suppresses rate_delta events for moves smaller than this
	// many percent.
	MinChangePct float64

	Fetcher Fetcher
	Store   RateStore
	Logger  *zap.Logger
	// Seed is served until the first successful poll.
	Seed currency.Rates
}

// Snapshot is the rate table served by /v1/rates.
type Snapshot struct {
	At     time.Time         `json:"at"`
	Source string            `json:"source"`
	Base   string            `json:"base"`
	Rates  map[string]string `json:"rates"`
}

// RateChange is one currency's move between polls.
type RateChange struct {
	Code      string  `json:"code"`
	Old       string  `json:"old"`
	New       string  `json:"new"`
	PctChange float64 `json:"pct_change"`
}

// Event is emitted whenever the rate table updates.
type Event struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Snapshot  *Snapshot    `json:"snapshot,omitempty"`
	Changes   []RateChange `json:"changes,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	RatesAt         time.Time `json:"rates_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Source          string    `json:"source"`
	Base            string    `json:"base"`
	Currencies      int       `json:"currencies"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// ConvertResult is served at /v1/convert.
type ConvertResult struct {
	Amount    string `json:"amount"`
	From      string `json:"from"`
	To        string `json:"to"`
	Result    string `json:"result"`
	Formatted string `json:"formatted"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	conv        *currency.Converter
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Minute {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8731"
	}
	if cfg.Base == "" {
		cfg.Base = "USD"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	conv := currency.NewConverter(cfg.Seed)
	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: time.Now(),
		conv:      conv,
		snapshot:  Snapshot{Source: "offline", Base: "USD", Rates: formatRates(conv.Rates())},
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/rates", s.handleRates)
	mux.HandleFunc("/v1/convert", s.handleConvert)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	if s.cfg.Fetcher == nil {
		return
	}
	fetched, err := s.cfg.Fetcher.FetchLatest(ctx, s.cfg.Base)
	var perUSD map[string]decimal.Decimal
	if err == nil {
		if perUSD = fetched.PerUSD(); perUSD == nil {
			err = fmt.Errorf("%w: table has no USD rate", rates.ErrUnavailable)
		}
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("rates poll failed", zap.Error(err))
		return
	}

	now := time.Now()
	snap := Snapshot{
		At:     now,
		Source: fetched.Source,
		Base:   "USD",
		Rates:  formatRates(perUSD),
	}

	if s.cfg.Store != nil {
		if err := s.cfg.Store.SaveRates(store.RateSnapshot{Source: fetched.Source, FetchedAt: now, PerUSD: perUSD}); err != nil {
			s.log.Warn("persisting rates failed", zap.Error(err))
		}
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.conv = currency.NewConverter(perUSD)
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  &snap,
		}
		publish = true
	} else if changes := diffRates(prev.Rates, snap.Rates, s.cfg.MinChangePct); len(changes) > 0 {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "rate_delta",
			Timestamp: now,
			Changes:   changes,
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Info("rates refreshed",
		zap.String("source", fetched.Source),
		zap.Int("currencies", len(perUSD)),
		zap.Bool("published", publish))

	if publish {
		s.publishEvent(ev)
	}
}

func formatRates(r map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(r))
	for code, v := range r {
		out[code] = v.String()
	}
	return out
}

// diffRates lists currencies whose rate moved by at least minPct percent,
// sorted by code. Currencies that appear or disappear are always reported.
func diffRates(prev, curr map[string]string, minPct float64) []RateChange {
	var out []RateChange
	for code, newStr := range curr {
		oldStr, ok := prev[code]
		if !ok {
			out = append(out, RateChange{Code: code, New: newStr})
			continue
		}
		if oldStr == newStr {
			continue
		}
		oldD, err1 := decimal.NewFromString(oldStr)
		newD, err2 := decimal.NewFromString(newStr)
		if err1 != nil || err2 != nil || !oldD.IsPositive() {
			continue
		}
		pct, _ := newD.Sub(oldD).Div(oldD).Mul(decimal.NewFromInt(100)).Float64()
		if abs(pct) < minPct || newD.Equal(oldD) {
			continue
		}
		out = append(out, RateChange{Code: code, Old: oldStr, New: newStr, PctChange: pct})
	}
	for code, oldStr := range prev {
		if _, ok := curr[code]; !ok {
			out = append(out, RateChange{Code: code, Old: oldStr})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
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

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		RatesAt:         s.snapshot.At,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Source:          s.snapshot.Source,
		Base:            s.snapshot.Base,
		Currencies:      len(s.snapshot.Rates),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleRates(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, ok := budget.ParseAmount(q.Get("amount"))
	if !ok {
		http.Error(w, "amount must be a number", http.StatusBadRequest)
		return
	}
	from := strings.ToUpper(q.Get("from"))
	to := strings.ToUpper(q.Get("to"))
	if from == "" {
		from = "USD"
	}
	if to == "" {
		http.Error(w, "missing to currency", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	conv := s.conv
	s.mu.RUnlock()

	out, err := conv.Convert(amount, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, ConvertResult{
		Amount:    amount.String(),
		From:      from,
		To:        to,
		Result:    out.StringFixed(2),
		Formatted: conv.FormatAmount(out, to),
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
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

	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	// Send current table immediately.
	writeSSE(w, Event{Type: "snapshot", Timestamp: time.Now(), Snapshot: &snap})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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

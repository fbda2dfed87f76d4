package daemon

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/store"
)

type fakeFetcher struct {
	snaps []*rates.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) FetchLatest(_ context.Context, _ string) (*rates.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap := f.snaps[f.calls]
	if f.calls < len(f.snaps)-1 {
		f.calls++
	}
	return snap, nil
}

type memStore struct {
	saved []store.RateSnapshot
}

func (m *memStore) SaveRates(snap store.RateSnapshot) error {
	m.saved = append(m.saved, snap)
	return nil
}

func table(pairs ...string) *rates.Snapshot {
	r := make(map[string]decimal.Decimal)
	for i := 0; i+1 < len(pairs); i += 2 {
		r[pairs[i]] = decimal.RequireFromString(pairs[i+1])
	}
	return &rates.Snapshot{Base: "USD", Source: "test", Rates: r}
}

func TestDiffRates(t *testing.T) {
	prev := map[string]string{"USD": "1", "EUR": "0.9", "GBP": "0.8", "OLD": "5"}
	curr := map[string]string{"USD": "1", "EUR": "0.99", "GBP": "0.8001", "NEW": "3"}

	changes := diffRates(prev, curr, 0.5)
	if len(changes) != 3 {
		t.Fatalf("changes = %+v, want EUR, NEW, OLD", changes)
	}
	if changes[0].Code != "EUR" || math.Abs(changes[0].PctChange-10) > 1e-9 {
		t.Fatalf("EUR change = %+v, want +10%%", changes[0])
	}
	if changes[1].Code != "NEW" || changes[1].Old != "" {
		t.Fatalf("added currency = %+v", changes[1])
	}
	if changes[2].Code != "OLD" || changes[2].New != "" {
		t.Fatalf("removed currency = %+v", changes[2])
	}

	if got := diffRates(curr, curr, 0); len(got) != 0 {
		t.Fatalf("identical tables produced %+v", got)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     time.Hour,
		EventsBuffer: 2,
	})

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

func TestPollOncePublishesAndPersists(t *testing.T) {
	f := &fakeFetcher{snaps: []*rates.Snapshot{
		table("USD", "1", "EUR", "0.9"),
		table("USD", "1", "EUR", "0.9"),
		table("USD", "1", "EUR", "0.95"),
	}}
	st := &memStore{}
	s := New(Config{Fetcher: f, Store: st})

	s.pollOnce(context.Background())
	s.pollOnce(context.Background())
	s.pollOnce(context.Background())

	if len(st.saved) != 3 {
		t.Fatalf("saved %d snapshots, want 3", len(st.saved))
	}
	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()
	if len(events) != 2 {
		t.Fatalf("events = %+v, want snapshot + one delta", events)
	}
	if events[0].Type != "snapshot" || events[1].Type != "rate_delta" {
		t.Fatalf("event types = %s, %s", events[0].Type, events[1].Type)
	}
	if events[1].Changes[0].Code != "EUR" || events[1].Changes[0].New != "0.95" {
		t.Fatalf("delta = %+v", events[1].Changes)
	}

	st2 := s.snapshotStatus()
	if st2.PollCount != 3 || st2.Currencies != 2 || st2.LastError != "" {
		t.Fatalf("status = %+v", st2)
	}
}

func TestPollOnceRecordsError(t *testing.T) {
	s := New(Config{Fetcher: &fakeFetcher{err: rates.ErrRateLimited}})
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError == "" || st.PollCount != 1 {
		t.Fatalf("status = %+v", st)
	}
	if st.Source != "offline" || st.Currencies == 0 {
		t.Fatalf("seed table should remain served, got %+v", st)
	}
}

func TestPollOnceRebasesNonUSD(t *testing.T) {
	snap := table("EUR", "1", "USD", "2")
	snap.Base = "EUR"
	s := New(Config{Fetcher: &fakeFetcher{snaps: []*rates.Snapshot{snap}}})
	s.pollOnce(context.Background())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.Rates["EUR"] != "0.5" {
		t.Fatalf("EUR per USD = %q, want 0.5", s.snapshot.Rates["EUR"])
	}
}

func TestHandleConvert(t *testing.T) {
	f := &fakeFetcher{snaps: []*rates.Snapshot{table("USD", "1", "EUR", "0.5")}}
	s := New(Config{Fetcher: f})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/convert?amount=100&from=usd&to=eur")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got ConvertResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Result != "50.00" || got.Formatted != "€50.00" {
		t.Fatalf("convert = %+v", got)
	}

	for path, want := range map[string]int{
		"/v1/convert?amount=abc&to=EUR": http.StatusBadRequest,
		"/v1/convert?amount=1":          http.StatusBadRequest,
		"/v1/convert?amount=1&to=ZZZ":   http.StatusUnprocessableEntity,
	} {
		r, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		_ = r.Body.Close()
		if r.StatusCode != want {
			t.Errorf("%s status = %d, want %d", path, r.StatusCode, want)
		}
	}
}

func TestHandleStatusAndHealth(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.PollIntervalSec != int((6 * time.Hour).Seconds()) {
		t.Fatalf("interval = %d", st.PollIntervalSec)
	}
}

func TestPollOnceRejectsTableWithoutUSD(t *testing.T) {
	snap := &rates.Snapshot{Base: "EUR", Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}}
	s := New(Config{Fetcher: &fakeFetcher{snaps: []*rates.Snapshot{snap}}})
	s.pollOnce(context.Background())
	if st := s.snapshotStatus(); st.LastError == "" || st.Source != "offline" {
		t.Fatalf("table without USD should be rejected, status = %+v", st)
	}
}

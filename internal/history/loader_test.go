package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shubhamdasnadas/assetwatch/pkg/logger"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

const day = 24 * time.Hour

// fakeSource serves a fixed per-item series, filtering by the requested
// range. It can block a specific item's fetches until released to exercise
// session supersession, or fail outright.
type fakeSource struct {
	mu     sync.Mutex
	series map[string][]models.HistoryPoint
	calls  []fetchCall
	err    error
	block  map[string]chan struct{}
}

type fetchCall struct {
	itemID     string
	from, till int64
}

func (f *fakeSource) FetchRange(ctx context.Context, itemID string, from, till int64) ([]models.HistoryPoint, error) {
	f.mu.Lock()
	gate := f.block[itemID]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{itemID: itemID, from: from, till: till})
	if f.err != nil {
		return nil, f.err
	}

	var out []models.HistoryPoint
	for _, p := range f.series[itemID] {
		if p.Clock >= from && p.Clock <= till {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// hourlySeries generates one point per hour covering [start-span, start].
func hourlySeries(start time.Time, span time.Duration) []models.HistoryPoint {
	var points []models.HistoryPoint
	for ts := start.Add(-span); !ts.After(start); ts = ts.Add(time.Hour) {
		points = append(points, models.HistoryPoint{Clock: ts.Unix(), Value: float64(ts.Unix() % 97)})
	}
	return points
}

func testOptions(now time.Time) Options {
	return Options{
		InitialWindow: 3 * day,
		ChunkWindow:   30 * day,
		MaxLookback:   365 * day,
		InitialDelay:  time.Millisecond,
		ChunkDelay:    time.Millisecond,
		MaxPoints:     100000, // keep snapshots raw so buffers can be compared
		Now:           func() time.Time { return now },
	}
}

func waitForPhase(t *testing.T, l *Loader, want Phase) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := l.Snapshot()
		if snap.Phase == want {
			return snap
		}
		if snap.Phase == PhaseFailed && want != PhaseFailed {
			t.Fatalf("loader failed while waiting for %q: %s", want, snap.Error)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %q, current %q", want, l.Snapshot().Phase)
	return Snapshot{}
}

func TestLoaderBackfillsToCompletion(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	series := hourlySeries(now, 40*day)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": series}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("item-1")
	snap := waitForPhase(t, l, PhaseComplete)

	if len(snap.Points) != len(series) {
		t.Fatalf("accumulated %d points, want full series of %d", len(snap.Points), len(series))
	}
	for i, p := range snap.Points {
		if p.Clock != series[i].Clock {
			t.Fatalf("point %d clock = %d, want %d", i, p.Clock, series[i].Clock)
		}
		if i > 0 && p.Clock <= snap.Points[i-1].Clock {
			t.Fatalf("buffer not strictly ascending at %d", i)
		}
	}
	// 40 days of data: recent window, two 30-day chunks with data, then one
	// empty chunk terminates the loop. Bounded, no infinite backfill.
	if calls := source.callCount(); calls > 5 {
		t.Errorf("loader made %d fetches, expected a small bounded number", calls)
	}
}

func TestLoaderEmptySeriesCompletesImmediately(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{series: map[string][]models.HistoryPoint{}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("empty-item")
	snap := waitForPhase(t, l, PhaseComplete)
	if len(snap.Points) != 0 {
		t.Errorf("expected empty buffer, got %d points", len(snap.Points))
	}
	// Give any stray backfill a chance to fire, then confirm there was none.
	time.Sleep(20 * time.Millisecond)
	if calls := source.callCount(); calls != 1 {
		t.Errorf("empty series triggered %d fetches, want exactly 1", calls)
	}
}

func TestLoaderLookbackExhaustion(t *testing.T) {
	// Data older than the lookback floor must never be requested; once
	// chunkStart hits the floor the session completes.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	series := hourlySeries(now, 400*day)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": series}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("item-1")
	waitForPhase(t, l, PhaseComplete)

	floor := now.Add(-365 * day).Unix()
	source.mu.Lock()
	defer source.mu.Unlock()
	for _, call := range source.calls {
		if call.from < floor {
			t.Fatalf("fetch requested from=%d, older than lookback floor %d", call.from, floor)
		}
	}
}

func TestLoaderFetchErrorFails(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{err: errors.New("connection refused")}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("item-1")
	snap := waitForPhase(t, l, PhaseFailed)
	if snap.Error == "" {
		t.Error("failed snapshot should carry the fetch error")
	}

	// Manual refresh restarts from idle; with the source healthy again the
	// session runs to completion.
	source.mu.Lock()
	source.err = nil
	source.series = map[string][]models.HistoryPoint{"item-1": hourlySeries(now, day)}
	source.mu.Unlock()

	l.Refresh()
	waitForPhase(t, l, PhaseComplete)
}

func TestLoaderOpenSupersedesPreviousSession(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	gate := make(chan struct{})
	seriesB := hourlySeries(now, day)
	source := &fakeSource{
		series: map[string][]models.HistoryPoint{
			"series-a": hourlySeries(now, 10*day),
			"series-b": seriesB,
		},
		block: map[string]chan struct{}{"series-a": gate},
	}
	l := NewLoader(source, logger.New(false), testOptions(now))

	// A's fetch blocks; opening B must cancel it before starting.
	l.Open("series-a")
	l.Open("series-b")

	snap := waitForPhase(t, l, PhaseComplete)
	close(gate)
	// Let A's cancelled fetch resolve; its result must be discarded.
	time.Sleep(20 * time.Millisecond)

	final := l.Snapshot()
	if final.ItemID != "series-b" {
		t.Fatalf("ItemID = %q, want series-b", final.ItemID)
	}
	if final.Phase != PhaseComplete {
		t.Fatalf("Phase = %q, want complete (cancellation must not fail the session)", final.Phase)
	}
	if len(snap.Points) != len(seriesB) {
		t.Errorf("buffer has %d points, want only B's %d", len(snap.Points), len(seriesB))
	}
}

func TestLoaderSubscribersObserveTransitions(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": hourlySeries(now, day)}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	var mu sync.Mutex
	var phases []Phase
	l.Subscribe(func(snap Snapshot) {
		mu.Lock()
		phases = append(phases, snap.Phase)
		mu.Unlock()
	})

	l.Open("item-1")
	waitForPhase(t, l, PhaseComplete)

	mu.Lock()
	defer mu.Unlock()
	if len(phases) == 0 {
		t.Fatal("subscriber saw no transitions")
	}
	if phases[0] != PhaseRecent {
		t.Errorf("first observed phase = %q, want recent", phases[0])
	}
	if phases[len(phases)-1] != PhaseComplete {
		t.Errorf("last observed phase = %q, want complete", phases[len(phases)-1])
	}
}

func TestLoaderCloseStopsBackfill(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": hourlySeries(now, 100*day)}}
	opts := testOptions(now)
	opts.ChunkDelay = 50 * time.Millisecond
	l := NewLoader(source, logger.New(false), opts)

	l.Open("item-1")
	waitForPhase(t, l, PhaseRecent)
	l.Close()

	calls := source.callCount()
	time.Sleep(150 * time.Millisecond)
	if got := source.callCount(); got > calls+1 {
		t.Errorf("backfill continued after Close: %d fetches, had %d at close", got, calls)
	}
	if snap := l.Snapshot(); snap.Phase != PhaseIdle {
		t.Errorf("Phase after Close = %q, want idle", snap.Phase)
	}
}

func TestLoaderMergeDeduplicatesOverlap(t *testing.T) {
	// Overlapping ranges from the source must not produce duplicate clocks.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	series := hourlySeries(now, 40*day)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": series}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("item-1")
	snap := waitForPhase(t, l, PhaseComplete)

	seen := make(map[int64]bool, len(snap.Points))
	for _, p := range snap.Points {
		if seen[p.Clock] {
			t.Fatalf("duplicate clock %d in accumulated buffer", p.Clock)
		}
		seen[p.Clock] = true
	}
}

func TestLoaderChunkRangesAreContiguous(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	series := hourlySeries(now, 40*day)
	source := &fakeSource{series: map[string][]models.HistoryPoint{"item-1": series}}
	l := NewLoader(source, logger.New(false), testOptions(now))

	l.Open("item-1")
	waitForPhase(t, l, PhaseComplete)

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.calls) < 2 {
		t.Fatalf("expected backfill fetches, got %d calls", len(source.calls))
	}
	// Each backfill chunk must end one second before the oldest point the
	// previous fetch returned, so no range is skipped or re-fetched.
	for i := 1; i < len(source.calls); i++ {
		prev := source.calls[i-1]
		cur := source.calls[i]
		prevOldest := int64(0)
		for _, p := range series {
			if p.Clock >= prev.from && p.Clock <= prev.till {
				prevOldest = p.Clock
				break
			}
		}
		if prevOldest == 0 {
			t.Fatalf("call %d returned no points; series misconfigured", i-1)
		}
		if want := prevOldest - 1; cur.till != want {
			t.Errorf("chunk %d till = %d, want previous oldest-1 = %d (from=%d)",
				i, cur.till, want, cur.from)
		}
	}
}

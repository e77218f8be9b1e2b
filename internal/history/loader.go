// Package history implements the progressive time-series loader behind the
// network-monitoring charts. A loader owns one chart session at a time: it
// fetches a small recent window first so the chart paints quickly, then
// backfills older chunks on a timer until the source is exhausted or the
// lookback limit is reached.
package history

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// Phase is the loader's externally visible state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRecent   Phase = "recent"
	PhaseOlder    Phase = "older"
	PhaseComplete Phase = "complete"
	PhaseFailed   Phase = "failed"
)

// Source fetches history points for an item within a closed time range.
// Implementations must return points ascending by clock; an empty slice is a
// valid result meaning no data exists in the range.
type Source interface {
	FetchRange(ctx context.Context, itemID string, from, till int64) ([]models.HistoryPoint, error)
}

// Options holds the backfill policy. The defaults match the charting UI's
// expectations; tests shrink the delays to keep runs fast.
type Options struct {
	InitialWindow time.Duration // recent window fetched on open
	ChunkWindow   time.Duration // size of each older backfill chunk
	MaxLookback   time.Duration // oldest history relative to session start
	InitialDelay  time.Duration // pause before the first backfill chunk
	ChunkDelay    time.Duration // pause between backfill chunks
	MaxPoints     int           // downsampling target for snapshots
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.InitialWindow <= 0 {
		o.InitialWindow = 3 * 24 * time.Hour
	}
	if o.ChunkWindow <= 0 {
		o.ChunkWindow = 30 * 24 * time.Hour
	}
	if o.MaxLookback <= 0 {
		o.MaxLookback = 365 * 24 * time.Hour
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 2200 * time.Millisecond
	}
	if o.ChunkDelay <= 0 {
		o.ChunkDelay = 4800 * time.Millisecond
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = 1200
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Snapshot is the subscribable view of a session: current phase, the
// accumulated (downsampled) points, and the failure, if any.
type Snapshot struct {
	ItemID string                `json:"item_id"`
	Phase  Phase                 `json:"phase"`
	Points []models.HistoryPoint `json:"points"`
	Error  string                `json:"error,omitempty"`
}

// Loader drives one chart session at a time. Opening a new item supersedes
// the previous session: its in-flight request and pending backfill timer are
// cancelled before the new session starts, and any late resolution from the
// old session is discarded via a generation check.
type Loader struct {
	source Source
	log    *slog.Logger
	opts   Options

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	itemID string
	phase  Phase
	points []models.HistoryPoint
	oldest int64
	err    error
	subs   []func(Snapshot)
}

// NewLoader constructs a loader over the given history source.
func NewLoader(source Source, log *slog.Logger, opts Options) *Loader {
	return &Loader{
		source: source,
		log:    log.With("component", "history_loader"),
		opts:   opts.withDefaults(),
		phase:  PhaseIdle,
	}
}

// Subscribe registers a callback invoked after every state change with a
// snapshot of the session. Callbacks run outside the loader's lock.
func (l *Loader) Subscribe(fn func(Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

// Open starts a session for the given series, cancelling any previous one.
func (l *Loader) Open(itemID string) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.itemID = itemID
	l.phase = PhaseIdle
	l.points = nil
	l.oldest = 0
	l.err = nil
	l.mu.Unlock()

	l.log.Debug("opening history session", "item_id", itemID)
	go l.run(ctx, gen, itemID)
}

// Refresh restarts the whole sequence for the current series from idle.
func (l *Loader) Refresh() {
	l.mu.Lock()
	itemID := l.itemID
	l.mu.Unlock()
	if itemID == "" {
		return
	}
	l.Open(itemID)
}

// Close cancels the in-flight request and any pending backfill timer. A
// cancelled session never transitions to failed.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.phase = PhaseIdle
	l.itemID = ""
	l.points = nil
	l.oldest = 0
	l.err = nil
	l.mu.Unlock()
}

// Snapshot returns the current session state with points downsampled to the
// configured budget.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() Snapshot {
	points := make([]models.HistoryPoint, len(l.points))
	copy(points, l.points)
	snap := Snapshot{
		ItemID: l.itemID,
		Phase:  l.phase,
		Points: Downsample(points, l.opts.MaxPoints),
	}
	if l.err != nil {
		snap.Error = l.err.Error()
	}
	return snap
}

// run executes the idle → recent → older → complete sequence for one session
// generation. All state mutations are guarded by the generation check so a
// superseded session cannot touch the buffer.
func (l *Loader) run(ctx context.Context, gen uint64, itemID string) {
	start := l.opts.Now()
	floor := start.Add(-l.opts.MaxLookback).Unix()

	if !l.setPhase(gen, PhaseRecent) {
		return
	}

	recent, err := l.source.FetchRange(ctx, itemID, start.Add(-l.opts.InitialWindow).Unix(), start.Unix())
	if err != nil {
		l.handleFetchError(ctx, gen, itemID, err)
		return
	}
	if len(recent) == 0 {
		// An empty series gets no backfill: there is nothing older to find.
		l.complete(gen, itemID)
		return
	}
	if !l.merge(gen, recent) {
		return
	}

	if !l.sleep(ctx, l.opts.InitialDelay) {
		return
	}

	chunkSeconds := int64(l.opts.ChunkWindow / time.Second)
	for {
		l.mu.Lock()
		if l.gen != gen {
			l.mu.Unlock()
			return
		}
		oldest := l.oldest
		l.mu.Unlock()

		chunkEnd := oldest - 1
		if chunkEnd <= 0 {
			l.complete(gen, itemID)
			return
		}
		chunkStart := chunkEnd - chunkSeconds
		if chunkStart < floor {
			chunkStart = floor
		}
		if chunkStart >= chunkEnd {
			// Lookback window exhausted.
			l.complete(gen, itemID)
			return
		}

		if !l.setPhase(gen, PhaseOlder) {
			return
		}
		chunk, err := l.source.FetchRange(ctx, itemID, chunkStart, chunkEnd)
		if err != nil {
			l.handleFetchError(ctx, gen, itemID, err)
			return
		}
		if len(chunk) == 0 {
			l.complete(gen, itemID)
			return
		}
		if !l.merge(gen, chunk) {
			return
		}

		if !l.sleep(ctx, l.opts.ChunkDelay) {
			return
		}
	}
}

// sleep waits for the backfill delay, returning false if the session was
// cancelled meanwhile.
func (l *Loader) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// handleFetchError moves the session to failed unless the error was caused by
// cancellation, which is swallowed silently.
func (l *Loader) handleFetchError(ctx context.Context, gen uint64, itemID string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		return
	}
	l.phase = PhaseFailed
	l.err = err
	snap := l.snapshotLocked()
	subs := l.subscribersLocked()
	l.mu.Unlock()

	l.log.Warn("history fetch failed", "item_id", itemID, "error", err)
	notify(subs, snap)
}

// merge folds a fetched chunk into the accumulated buffer, keeping it
// ascending by clock with duplicate clocks dropped, and advances the oldest
// loaded clock. Returns false when the session was superseded.
func (l *Loader) merge(gen uint64, chunk []models.HistoryPoint) bool {
	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		return false
	}

	l.points = append(l.points, chunk...)
	sort.Slice(l.points, func(i, j int) bool { return l.points[i].Clock < l.points[j].Clock })
	deduped := l.points[:0]
	for _, p := range l.points {
		if len(deduped) > 0 && p.Clock == deduped[len(deduped)-1].Clock {
			continue
		}
		deduped = append(deduped, p)
	}
	l.points = deduped

	chunkOldest := chunk[0].Clock
	for _, p := range chunk[1:] {
		if p.Clock < chunkOldest {
			chunkOldest = p.Clock
		}
	}
	if l.oldest == 0 || chunkOldest < l.oldest {
		l.oldest = chunkOldest
	}

	snap := l.snapshotLocked()
	subs := l.subscribersLocked()
	l.mu.Unlock()

	notify(subs, snap)
	return true
}

func (l *Loader) setPhase(gen uint64, phase Phase) bool {
	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		return false
	}
	l.phase = phase
	snap := l.snapshotLocked()
	subs := l.subscribersLocked()
	l.mu.Unlock()

	notify(subs, snap)
	return true
}

func (l *Loader) complete(gen uint64, itemID string) {
	if l.setPhase(gen, PhaseComplete) {
		l.log.Debug("history session complete", "item_id", itemID)
	}
}

func (l *Loader) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), len(l.subs))
	copy(subs, l.subs)
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

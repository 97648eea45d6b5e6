package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/ballometer-tracker/internal/cursor"
	"github.com/saviobatista/ballometer-tracker/internal/gapfill"
	"github.com/saviobatista/ballometer-tracker/internal/live"
	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/series"
	"github.com/saviobatista/ballometer-tracker/internal/stats"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// ErrStopped is returned by mutating calls after Stop
var ErrStopped = errors.New("session stopped")

// ColdLoader fetches the recorded trace
type ColdLoader func(ctx context.Context) (*types.ColdPayload, error)

// LiveFetcher fetches the latest live sample
type LiveFetcher func(ctx context.Context) (*types.LiveSample, error)

// Publisher hands render states to the view layer
type Publisher interface {
	PublishRenderState(ctx context.Context, state *types.RenderState) error
}

// OffsetResolver derives the UTC offset in hours for a sample
type OffsetResolver interface {
	UTCOffset(timestamp float64, p types.Point) float64
}

// Options configures a Session. Cold, Poll and Replay are all optional.
type Options struct {
	Cold      ColdLoader
	Poll      LiveFetcher
	Replay    *series.Store
	Publisher Publisher
	Offsets   OffsetResolver
	Stats     *stats.Stats
	Logger    *slog.Logger
	Interval  time.Duration
	Strict    bool
	Now       func() time.Time
}

// Session owns the series store and the shared cursor. Every mutation of
// either happens under one lock so an append and the cursor advance it
// triggers are observed together.
type Session struct {
	id string

	mu      sync.Mutex
	store   *series.Store
	cursor  *cursor.Cursor
	merger  *live.Merger
	version uint64
	stopped bool

	// live samples received while the cold load is in flight
	loading bool
	pending []pendingSample

	publishMu     sync.Mutex
	lastPublished uint64

	cold      ColdLoader
	poll      LiveFetcher
	replay    *series.Store
	publisher Publisher
	offsets   OffsetResolver
	stats     *stats.Stats
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time

	seq    atomic.Uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type pendingSample struct {
	seq    uint64
	sample *types.LiveSample
}

// New creates a session holding the default single-sample frame
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stats == nil {
		opts.Stats = stats.New()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	id := uuid.New().String()
	return &Session{
		id:        id,
		store:     series.NewDefault(opts.Now()),
		cursor:    cursor.New(opts.Strict),
		merger:    live.New(),
		cold:      opts.Cold,
		poll:      opts.Poll,
		replay:    opts.Replay,
		publisher: opts.Publisher,
		offsets:   opts.Offsets,
		stats:     opts.Stats,
		logger:    opts.Logger.With(slog.String("session", id)),
		interval:  opts.Interval,
		now:       opts.Now,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Start loads the initial frame and starts the tick loop. A failed cold load
// is logged and leaves the default frame in place. The cold load runs before
// the poll ticker starts, so a slow source delays the first poll by up to the
// loader's timeout. Live samples applied while it runs are buffered and merged
// on top of the loaded frame when newer than its last sample.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.loading = s.replay == nil && s.cold != nil
	s.mu.Unlock()

	switch {
	case s.replay != nil:
		if err := s.load(s.replay); err != nil {
			return fmt.Errorf("failed to start replay: %w", err)
		}
	case s.cold != nil:
		s.stats.IncrementColdLoads()
		payload, err := s.cold(ctx)
		if err == nil {
			err = s.Reload(payload)
		}
		if err != nil {
			s.stats.IncrementColdLoadErrors()
			s.logger.Error("Cold load failed, keeping default frame", slog.Any("error", err))
			s.mu.Lock()
			if !s.stopped {
				s.applyPendingLocked()
			}
			s.loading = false
			s.pending = nil
			s.mu.Unlock()
			s.publishCurrent(ctx)
		}
	default:
		s.publishCurrent(ctx)
	}

	if s.replay != nil || s.poll != nil {
		s.wg.Add(1)
		go s.run(ctx)
	}
	return nil
}

// Stop cancels the tick loop and in-flight polls and waits for them. After
// Stop the session rejects every mutation.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Reload replaces the frame with a cold-load payload and re-derives the cursor
func (s *Session) Reload(payload *types.ColdPayload) error {
	if payload == nil {
		return fmt.Errorf("empty cold payload")
	}
	for name, ch := range map[string][]*float64{
		"altitude":  payload.Altitude,
		"speed":     payload.Speed,
		"heading":   payload.Heading,
		"climb":     payload.Climb,
		"longitude": payload.Longitude,
		"latitude":  payload.Latitude,
	} {
		if !gapfill.Present(ch) {
			s.logger.Warn("Channel has no readings, using fallback", slog.String("channel", name))
		}
	}

	store, err := series.FromPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to build frame: %w", err)
	}
	return s.load(store)
}

func (s *Session) load(store *series.Store) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if err := s.cursor.Reset(store.Points()); err != nil {
		s.mu.Unlock()
		return err
	}
	s.store = store
	if s.loading {
		s.applyPendingLocked()
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("Frame loaded",
		slog.Int("length", state.Length),
		slog.Int("index", state.Index),
		slog.Bool("replay", store.Replay()))
	s.publish(context.Background(), state)
	return nil
}

// ApplyLive merges one live sample tagged with its poll sequence number
func (s *Session) ApplyLive(seq uint64, sample *types.LiveSample) error {
	start := time.Now()
	if sample.Time == nil {
		return parser.ErrMissingTime
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.loading {
		s.pending = append(s.pending, pendingSample{seq: seq, sample: sample})
		s.mu.Unlock()
		return nil
	}
	before, err := s.merger.Merge(s.store, seq, sample)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, live.ErrStaleSample) {
			s.stats.IncrementStaleSamples()
		}
		return err
	}
	s.cursor.Grow(before, s.store.Len())
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.stats.IncrementMergedSamples()
	s.stats.AddProcessingTime(time.Since(start))
	s.publish(context.Background(), state)
	return nil
}

// applyPendingLocked merges the samples buffered during the cold load in
// sequence order, skipping those the loaded frame already covers. Callers
// hold s.mu.
func (s *Session) applyPendingLocked() {
	pending := s.pending
	s.pending = nil
	s.loading = false

	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	for _, p := range pending {
		if *p.sample.Time <= s.store.Last().Time {
			continue
		}
		before, err := s.merger.Merge(s.store, p.seq, p.sample)
		if err != nil {
			if errors.Is(err, live.ErrStaleSample) {
				s.stats.IncrementStaleSamples()
			}
			s.logger.Debug("Dropped buffered live sample", slog.Uint64("seq", p.seq), slog.Any("error", err))
			continue
		}
		s.cursor.Grow(before, s.store.Len())
		s.stats.IncrementMergedSamples()
	}
	if len(pending) > 0 {
		s.logger.Info("Applied live samples buffered during cold load", slog.Int("buffered", len(pending)))
	}
}

// AdvanceReplay reveals the next replay sample. It reports whether the
// visible frame grew.
func (s *Session) AdvanceReplay() (bool, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false, ErrStopped
	}
	before := s.store.Len()
	if !s.store.Advance() {
		s.mu.Unlock()
		return false, nil
	}
	s.cursor.Grow(before, s.store.Len())
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.stats.IncrementReplayAdvances()
	s.publish(context.Background(), state)
	return true, nil
}

// Drag snaps the cursor to the sample nearest the dragged marker
func (s *Session) Drag(p types.Point) (int, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, ErrStopped
	}
	idx, err := s.cursor.Drag(s.store.Points(), p)
	if err != nil {
		s.mu.Unlock()
		return idx, err
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.stats.IncrementDrags()
	s.publish(context.Background(), state)
	return idx, nil
}

// Scrub sets the cursor from a chart axis position
func (s *Session) Scrub(i int) (int, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, ErrStopped
	}
	idx, err := s.cursor.Scrub(i)
	if err != nil {
		s.mu.Unlock()
		return idx, err
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.stats.IncrementScrubs()
	s.publish(context.Background(), state)
	return idx, nil
}

// HandleCursorEvent dispatches a gesture from the view layer
func (s *Session) HandleCursorEvent(event *types.CursorEvent) error {
	switch event.Kind {
	case types.CursorEventDrag:
		if event.Point == nil {
			return fmt.Errorf("drag event without point")
		}
		_, err := s.Drag(*event.Point)
		return err
	case types.CursorEventScrub:
		if event.Index == nil {
			return fmt.Errorf("scrub event without index")
		}
		_, err := s.Scrub(*event.Index)
		return err
	default:
		return fmt.Errorf("unknown cursor event kind %q", event.Kind)
	}
}

// State returns the current render state
func (s *Session) State() types.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked builds the render state. Callers hold s.mu.
func (s *Session) snapshotLocked() types.RenderState {
	n := s.store.Len()
	idx := s.cursor.Index()
	if idx < 0 || idx >= n {
		// Never hand an invalid index to the views.
		s.logger.Error("Cursor index out of range, clamping",
			slog.Int("index", idx), slog.Int("length", n))
		if idx < 0 {
			idx = 0
		} else {
			idx = n - 1
		}
		_, _ = s.cursor.Scrub(idx)
	}

	row, _ := s.store.Row(idx)
	offset := 0.0
	if s.offsets != nil {
		offset = s.offsets.UTCOffset(row.Time, types.Point{Longitude: row.Longitude, Latitude: row.Latitude})
	}

	s.version++
	s.stats.SetFrameLength(n)
	return types.RenderState{
		SessionID:      s.id,
		Version:        s.version,
		Index:          idx,
		Length:         n,
		AtTrailingEdge: idx == n-1,
		Current:        row,
		UTCOffset:      offset,
		Frame:          s.store.Frame(),
		UpdatedAt:      s.now(),
	}
}

func (s *Session) publishCurrent(ctx context.Context) {
	s.publish(ctx, s.State())
}

// publish forwards state unless a newer one has already gone out
func (s *Session) publish(ctx context.Context, state types.RenderState) {
	if s.publisher == nil {
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if state.Version <= s.lastPublished {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.publisher.PublishRenderState(ctx, &state); err != nil {
		s.stats.IncrementPublishErrors()
		s.logger.Warn("Failed to publish render state", slog.Any("error", err))
		return
	}
	s.lastPublished = state.Version
}

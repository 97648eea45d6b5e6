package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sink persists statistics snapshots
type Sink interface {
	StoreSystemStats(ctx context.Context, stats map[string]interface{}) error
}

// Stats tracks session processing statistics
type Stats struct {
	// Transport counts
	ColdLoads      uint64
	ColdLoadErrors uint64
	Polls          uint64
	PollErrors     uint64

	// Reconciliation counts
	MergedSamples  uint64
	StaleSamples   uint64
	ReplayAdvances uint64
	Drags          uint64
	Scrubs         uint64
	PublishErrors  uint64

	// Current frame
	FrameLength uint64

	StartTime      time.Time
	LastSampleTime time.Time
	ProcessingTime time.Duration

	sink Sink

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

// SetSink sets the persistence target
func (s *Stats) SetSink(sink Sink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Persist stores the current statistics in the sink
func (s *Stats) Persist(ctx context.Context) error {
	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()
	if sink == nil {
		return fmt.Errorf("statistics sink not set")
	}

	return sink.StoreSystemStats(ctx, s.GetStats())
}

func (s *Stats) IncrementColdLoads()      { atomic.AddUint64(&s.ColdLoads, 1) }
func (s *Stats) IncrementColdLoadErrors() { atomic.AddUint64(&s.ColdLoadErrors, 1) }
func (s *Stats) IncrementPolls()          { atomic.AddUint64(&s.Polls, 1) }
func (s *Stats) IncrementPollErrors()     { atomic.AddUint64(&s.PollErrors, 1) }
func (s *Stats) IncrementStaleSamples()   { atomic.AddUint64(&s.StaleSamples, 1) }
func (s *Stats) IncrementReplayAdvances() { atomic.AddUint64(&s.ReplayAdvances, 1) }
func (s *Stats) IncrementDrags()          { atomic.AddUint64(&s.Drags, 1) }
func (s *Stats) IncrementScrubs()         { atomic.AddUint64(&s.Scrubs, 1) }
func (s *Stats) IncrementPublishErrors()  { atomic.AddUint64(&s.PublishErrors, 1) }

// IncrementMergedSamples counts a merged live sample and stamps its arrival
func (s *Stats) IncrementMergedSamples() {
	atomic.AddUint64(&s.MergedSamples, 1)
	s.mu.Lock()
	s.LastSampleTime = time.Now()
	s.mu.Unlock()
}

// SetFrameLength records the current frame length
func (s *Stats) SetFrameLength(n int) {
	atomic.StoreUint64(&s.FrameLength, uint64(n))
}

// AddProcessingTime adds to the total processing time
func (s *Stats) AddProcessingTime(duration time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += duration
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"cold_loads":       atomic.LoadUint64(&s.ColdLoads),
		"cold_load_errors": atomic.LoadUint64(&s.ColdLoadErrors),
		"polls":            atomic.LoadUint64(&s.Polls),
		"poll_errors":      atomic.LoadUint64(&s.PollErrors),
		"merged_samples":   atomic.LoadUint64(&s.MergedSamples),
		"stale_samples":    atomic.LoadUint64(&s.StaleSamples),
		"replay_advances":  atomic.LoadUint64(&s.ReplayAdvances),
		"drags":            atomic.LoadUint64(&s.Drags),
		"scrubs":           atomic.LoadUint64(&s.Scrubs),
		"publish_errors":   atomic.LoadUint64(&s.PublishErrors),
		"frame_length":     atomic.LoadUint64(&s.FrameLength),
		"last_sample_time": s.LastSampleTime,
		"processing_time":  s.ProcessingTime,
		"uptime":           time.Since(s.StartTime),
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Cold Loads: %d (errors %d)\n"+
			"Polls: %d (errors %d)\n"+
			"Merged Samples: %d (stale %d)\n"+
			"Replay Advances: %d\n"+
			"Drags: %d, Scrubs: %d\n"+
			"Frame Length: %d\n"+
			"Processing Time: %s\n"+
			"Uptime: %s",
		stats["cold_loads"], stats["cold_load_errors"],
		stats["polls"], stats["poll_errors"],
		stats["merged_samples"], stats["stale_samples"],
		stats["replay_advances"],
		stats["drags"], stats["scrubs"],
		stats["frame_length"],
		stats["processing_time"],
		stats["uptime"],
	)
}

// StartPersistence periodically persists and logs statistics until ctx is done
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := s.Persist(finalCtx)
			cancel()
			if err != nil {
				logger.Warn("Failed to persist final statistics", slog.Any("error", err))
			}
			return
		case <-ticker.C:
			logger.Info("Statistics", slog.Any("stats", s.GetStats()))
			if err := s.Persist(ctx); err != nil {
				logger.Warn("Failed to persist statistics", slog.Any("error", err))
			}
		}
	}
}

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saviobatista/ballometer-tracker/internal/live"
)

// run drives the session on a fixed interval until ctx is cancelled. In
// replay mode every tick reveals one sample; otherwise every tick issues an
// independent poll whose completion is merged when it arrives.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.replay != nil {
				if _, err := s.AdvanceReplay(); err != nil && !errors.Is(err, ErrStopped) {
					s.logger.Warn("Replay advance failed", slog.Any("error", err))
				}
				continue
			}
			s.wg.Add(1)
			go s.pollOnce(ctx, s.seq.Add(1))
		}
	}
}

// pollOnce fetches one live sample. A failed poll skips this tick; the next
// tick retries naturally.
func (s *Session) pollOnce(ctx context.Context, seq uint64) {
	defer s.wg.Done()

	s.stats.IncrementPolls()
	sample, err := s.poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.stats.IncrementPollErrors()
			s.logger.Warn("Poll failed", slog.Uint64("seq", seq), slog.Any("error", err))
		}
		return
	}

	if err := s.ApplyLive(seq, sample); err != nil {
		switch {
		case errors.Is(err, ErrStopped):
		case errors.Is(err, live.ErrStaleSample):
			s.logger.Debug("Discarded out-of-order poll", slog.Uint64("seq", seq))
		default:
			s.logger.Warn("Failed to merge live sample", slog.Uint64("seq", seq), slog.Any("error", err))
		}
	}
}

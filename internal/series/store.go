package series

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/saviobatista/ballometer-tracker/internal/gapfill"
	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

var (
	// ErrEmptyFrame is returned when a frame without samples is loaded
	ErrEmptyFrame = errors.New("frame has no samples")
	// ErrMisaligned is returned when channel lengths differ
	ErrMisaligned = errors.New("channel lengths differ")
	// ErrReplayAppend is returned when appending to a replay store
	ErrReplayAppend = errors.New("replay store does not accept appends")
)

// Store is the canonical in-memory telemetry frame. It is not safe for
// concurrent use; the session serializes access.
type Store struct {
	frame   types.Frame
	visible int
	replay  bool
}

// NewDefault returns the single synthetic sample shown before any data arrives
func NewDefault(now time.Time) *Store {
	t := float64(now.UnixNano()) * 1e-9
	return &Store{
		frame: types.Frame{
			Altitude:  []float64{gapfill.FallbackAltitude},
			Speed:     []float64{gapfill.FallbackSpeed},
			Heading:   []float64{gapfill.FallbackHeading},
			Climb:     []float64{gapfill.FallbackClimb},
			Time:      []float64{t},
			Longitude: []float64{gapfill.ReferenceLongitude},
			Latitude:  []float64{gapfill.ReferenceLatitude},
		},
		visible: 1,
	}
}

// FromPayload builds a store from a cold-load payload. The time channel sets
// the length; other channels are truncated or padded with absent values and
// then gap-filled.
func FromPayload(payload *types.ColdPayload) (*Store, error) {
	if err := parser.ValidateColdPayload(payload); err != nil {
		return nil, err
	}

	n := len(payload.Time)
	timeChannel := make([]float64, n)
	for i, t := range payload.Time {
		timeChannel[i] = *t
	}

	frame := types.Frame{
		Altitude:  gapfill.Fill(normalize(payload.Altitude, n), gapfill.FallbackAltitude),
		Speed:     gapfill.Fill(normalize(payload.Speed, n), gapfill.FallbackSpeed),
		Heading:   gapfill.Fill(normalize(payload.Heading, n), gapfill.FallbackHeading),
		Climb:     gapfill.Fill(normalize(payload.Climb, n), gapfill.FallbackClimb),
		Time:      timeChannel,
		Longitude: gapfill.Fill(normalize(payload.Longitude, n), gapfill.FallbackLongitude),
		Latitude:  gapfill.Fill(normalize(payload.Latitude, n), gapfill.FallbackLatitude),
	}

	return &Store{frame: frame, visible: n}, nil
}

func normalize(channel []*float64, n int) []*float64 {
	if len(channel) >= n {
		return channel[:n]
	}
	out := make([]*float64, n)
	copy(out, channel)
	return out
}

// NewReplay exposes a growing prefix of a precomputed frame. The first
// start+1 samples are visible initially.
func NewReplay(frame types.Frame, start int) (*Store, error) {
	if frame.Len() == 0 {
		return nil, ErrEmptyFrame
	}
	if !frame.Aligned() {
		return nil, ErrMisaligned
	}
	if start < 0 {
		start = 0
	}
	if start >= frame.Len() {
		start = frame.Len() - 1
	}
	return &Store{frame: frame.Clone(), visible: start + 1, replay: true}, nil
}

// Len returns the number of visible samples
func (s *Store) Len() int {
	return s.visible
}

// Replay reports whether the store is a replay prefix
func (s *Store) Replay() bool {
	return s.replay
}

// Frame returns the visible frame. The slices share storage with the store but
// are capacity-limited, and visible elements are never rewritten.
func (s *Store) Frame() types.Frame {
	return s.frame.Prefix(s.visible)
}

// Points returns the visible geographic track
func (s *Store) Points() []types.Point {
	f := s.Frame()
	return f.Points()
}

// Row returns the sample at index i
func (s *Store) Row(i int) (types.Sample, error) {
	if i < 0 || i >= s.visible {
		return types.Sample{}, fmt.Errorf("row %d outside [0, %d)", i, s.visible)
	}
	return s.frame.Row(i), nil
}

// Last returns the trailing-edge sample
func (s *Store) Last() types.Sample {
	return s.frame.Row(s.visible - 1)
}

// Append adds one sample to every channel
func (s *Store) Append(sample types.Sample) error {
	if s.replay {
		return ErrReplayAppend
	}

	f := &s.frame
	f.Altitude = append(f.Altitude, sample.Altitude)
	f.Speed = append(f.Speed, sample.Speed)
	f.Heading = append(f.Heading, sample.Heading)
	f.Climb = append(f.Climb, sample.Climb)
	f.Time = append(f.Time, sample.Time)
	f.Longitude = append(f.Longitude, sample.Longitude)
	f.Latitude = append(f.Latitude, sample.Latitude)
	s.visible++

	return nil
}

// Advance reveals the next replay sample. It returns false when the store is
// not a replay or the whole frame is already visible.
func (s *Store) Advance() bool {
	if !s.replay || s.visible >= s.frame.Len() {
		return false
	}
	s.visible++
	return true
}

// LoadReplayFile reads a cold payload document from path, gap-fills it and
// exposes it as a replay prefix starting at index start.
func LoadReplayFile(path string, start int) (*Store, error) {
	//nolint:gosec // path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}
	payload, err := parser.ParseColdPayload(data)
	if err != nil {
		return nil, err
	}
	full, err := FromPayload(payload)
	if err != nil {
		return nil, err
	}
	return NewReplay(full.frame, start)
}

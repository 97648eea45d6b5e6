package live

import (
	"errors"
	"fmt"

	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// ErrStaleSample is returned for a poll completion older than the last applied one
var ErrStaleSample = errors.New("stale live sample")

// Appender is the part of the series store the merger writes to
type Appender interface {
	Len() int
	Last() types.Sample
	Append(sample types.Sample) error
}

// Merger appends live samples using hold-last-value for absent channels.
// Each poll is tagged with a monotonically increasing sequence number and
// completions that arrive after a newer one has been applied are dropped.
type Merger struct {
	lastSeq uint64
	applied bool
}

// New creates a merger that has not applied any sample yet
func New() *Merger {
	return &Merger{}
}

// LastSequence returns the sequence number of the last applied sample
func (m *Merger) LastSequence() (uint64, bool) {
	return m.lastSeq, m.applied
}

// Merge appends sample to store. It returns the store length before the append.
func (m *Merger) Merge(store Appender, seq uint64, sample *types.LiveSample) (int, error) {
	if m.applied && seq <= m.lastSeq {
		return 0, fmt.Errorf("%w: sequence %d, last applied %d", ErrStaleSample, seq, m.lastSeq)
	}
	if sample.Time == nil {
		return 0, parser.ErrMissingTime
	}

	before := store.Len()
	if err := store.Append(Resolve(store.Last(), sample)); err != nil {
		return 0, fmt.Errorf("failed to append live sample: %w", err)
	}

	m.lastSeq = seq
	m.applied = true
	return before, nil
}

// Resolve builds the row to append: present live values win, absent ones hold
// the last known value.
func Resolve(last types.Sample, sample *types.LiveSample) types.Sample {
	return types.Sample{
		Altitude:  hold(sample.Altitude, last.Altitude),
		Speed:     hold(sample.Speed, last.Speed),
		Heading:   hold(sample.Heading, last.Heading),
		Climb:     hold(sample.Climb, last.Climb),
		Time:      hold(sample.Time, last.Time),
		Longitude: hold(sample.Longitude, last.Longitude),
		Latitude:  hold(sample.Latitude, last.Latitude),
	}
}

func hold(v *float64, last float64) float64 {
	if v == nil {
		return last
	}
	return *v
}

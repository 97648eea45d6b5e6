package live

import (
	"errors"
	"reflect"
	"testing"

	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/series"
	"github.com/saviobatista/ballometer-tracker/internal/testutils"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

func newStore(t *testing.T) *series.Store {
	t.Helper()
	payload := &types.ColdPayload{
		Altitude:  testutils.Floats(100, 110),
		Speed:     testutils.Floats(3.0, 4.0),
		Heading:   testutils.Floats(90, 91),
		Climb:     testutils.Floats(1, 2),
		Time:      testutils.Floats(10, 11),
		Longitude: testutils.Floats(8.5, 8.6),
		Latitude:  testutils.Floats(47.0, 47.1),
	}
	s, err := series.FromPayload(payload)
	if err != nil {
		t.Fatalf("FromPayload() failed: %v", err)
	}
	return s
}

func TestMerge_HoldLastValue(t *testing.T) {
	store := newStore(t)
	m := New()

	before, err := m.Merge(store, 1, &types.LiveSample{Time: testutils.Float(12)})
	if err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}
	if before != 2 {
		t.Errorf("Expected length before 2, got %d", before)
	}

	frame := store.Frame()
	if !reflect.DeepEqual(frame.Speed, []float64{3.0, 4.0, 4.0}) {
		t.Errorf("Speed = %v, want [3 4 4]", frame.Speed)
	}
	if !reflect.DeepEqual(frame.Time, []float64{10, 11, 12}) {
		t.Errorf("Time = %v, want [10 11 12]", frame.Time)
	}
}

func TestMerge_Atomicity(t *testing.T) {
	store := newStore(t)
	m := New()

	sample := &types.LiveSample{
		Time:     testutils.Float(12),
		Altitude: testutils.Float(150),
		Latitude: testutils.Float(47.2),
	}
	if _, err := m.Merge(store, 1, sample); err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}

	frame := store.Frame()
	for name, ch := range map[string][]float64{
		"altitude": frame.Altitude, "speed": frame.Speed, "heading": frame.Heading, "climb": frame.Climb,
		"time": frame.Time, "longitude": frame.Longitude, "latitude": frame.Latitude,
	} {
		if len(ch) != 3 {
			t.Errorf("Channel %s has length %d, want 3", name, len(ch))
		}
	}
	want := types.Sample{Altitude: 150, Speed: 4, Heading: 91, Climb: 2, Time: 12, Longitude: 8.6, Latitude: 47.2}
	if store.Last() != want {
		t.Errorf("Last() = %+v, want %+v", store.Last(), want)
	}
}

func TestMerge_DiscardsOutOfOrder(t *testing.T) {
	store := newStore(t)
	m := New()

	if _, err := m.Merge(store, 5, &types.LiveSample{Time: testutils.Float(15)}); err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}

	for _, seq := range []uint64{5, 3} {
		_, err := m.Merge(store, seq, &types.LiveSample{Time: testutils.Float(13)})
		if !errors.Is(err, ErrStaleSample) {
			t.Errorf("seq %d: expected ErrStaleSample, got %v", seq, err)
		}
	}
	if store.Len() != 3 {
		t.Errorf("Expected stale samples not to be appended, length %d", store.Len())
	}

	if _, err := m.Merge(store, 6, &types.LiveSample{Time: testutils.Float(16)}); err != nil {
		t.Errorf("Merge() of newer sample failed: %v", err)
	}
	if seq, ok := m.LastSequence(); !ok || seq != 6 {
		t.Errorf("LastSequence() = %d, %v; want 6, true", seq, ok)
	}
}

func TestMerge_FirstSequenceZeroAccepted(t *testing.T) {
	store := newStore(t)
	m := New()
	if _, err := m.Merge(store, 0, &types.LiveSample{Time: testutils.Float(12)}); err != nil {
		t.Errorf("Expected first sample to be accepted, got %v", err)
	}
}

func TestMerge_MissingTime(t *testing.T) {
	store := newStore(t)
	m := New()

	_, err := m.Merge(store, 1, &types.LiveSample{Speed: testutils.Float(1)})
	if !errors.Is(err, parser.ErrMissingTime) {
		t.Errorf("Expected ErrMissingTime, got %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("Expected store unchanged, length %d", store.Len())
	}
	if _, ok := m.LastSequence(); ok {
		t.Error("Expected no sequence recorded after a rejected sample")
	}
}

func TestMerge_ReplayStoreRejects(t *testing.T) {
	full := newStore(t)
	replay, err := series.NewReplay(full.Frame(), 0)
	if err != nil {
		t.Fatalf("NewReplay() failed: %v", err)
	}

	m := New()
	if _, err := m.Merge(replay, 1, &types.LiveSample{Time: testutils.Float(12)}); !errors.Is(err, series.ErrReplayAppend) {
		t.Errorf("Expected ErrReplayAppend, got %v", err)
	}
}

func TestMerge_SequenceSpansStores(t *testing.T) {
	m := New()
	if _, err := m.Merge(newStore(t), 5, &types.LiveSample{Time: testutils.Float(20)}); err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}

	// a reloaded frame does not reopen older polls
	reloaded := newStore(t)
	if _, err := m.Merge(reloaded, 3, &types.LiveSample{Time: testutils.Float(21)}); !errors.Is(err, ErrStaleSample) {
		t.Errorf("Expected ErrStaleSample, got %v", err)
	}
	if _, err := m.Merge(reloaded, 6, &types.LiveSample{Time: testutils.Float(22)}); err != nil {
		t.Errorf("Expected newer sequence to merge, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	last := types.Sample{Altitude: 1, Speed: 2, Heading: 3, Climb: 4, Time: 5, Longitude: 6, Latitude: 7}
	got := Resolve(last, &types.LiveSample{Time: testutils.Float(6), Heading: testutils.Float(0)})
	want := types.Sample{Altitude: 1, Speed: 2, Heading: 0, Climb: 4, Time: 6, Longitude: 6, Latitude: 7}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

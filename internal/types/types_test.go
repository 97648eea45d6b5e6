package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testFrame() Frame {
	return Frame{
		Altitude:  []float64{400, 410, 420},
		Speed:     []float64{5, 6, 7},
		Heading:   []float64{45, 46, 47},
		Climb:     []float64{2, 2, 1},
		Time:      []float64{100, 101, 102},
		Longitude: []float64{8.55, 8.56, 8.57},
		Latitude:  []float64{47.35, 47.36, 47.37},
	}
}

func TestFrame_Aligned(t *testing.T) {
	f := testFrame()
	if !f.Aligned() || f.Len() != 3 {
		t.Errorf("Expected aligned frame of 3, got len %d", f.Len())
	}

	f.Speed = f.Speed[:2]
	if f.Aligned() {
		t.Error("Expected misaligned frame to be reported")
	}

	var empty Frame
	if !empty.Aligned() || empty.Len() != 0 {
		t.Error("Expected empty frame to be aligned with length 0")
	}
}

func TestFrame_Prefix(t *testing.T) {
	f := testFrame()
	p := f.Prefix(2)

	if p.Len() != 2 || !p.Aligned() {
		t.Fatalf("Expected aligned prefix of 2, got %d", p.Len())
	}
	if cap(p.Time) != 2 {
		t.Errorf("Expected capacity-limited prefix, cap %d", cap(p.Time))
	}

	// appending to the prefix must not overwrite the parent
	p.Time = append(p.Time, -1)
	if f.Time[2] != 102 {
		t.Errorf("Parent frame modified through prefix: %v", f.Time)
	}
}

func TestFrame_Clone(t *testing.T) {
	f := testFrame()
	c := f.Clone()

	if !reflect.DeepEqual(f, c) {
		t.Fatalf("Clone differs: %+v", c)
	}
	c.Altitude[0] = -1
	if f.Altitude[0] != 400 {
		t.Error("Clone shares storage with original")
	}
}

func TestFrame_PointsAndRow(t *testing.T) {
	f := testFrame()

	points := f.Points()
	if len(points) != 3 || points[1] != (Point{Longitude: 8.56, Latitude: 47.36}) {
		t.Errorf("Unexpected points: %v", points)
	}

	row := f.Row(2)
	want := Sample{Altitude: 420, Speed: 7, Heading: 47, Climb: 1, Time: 102, Longitude: 8.57, Latitude: 47.37}
	if row != want {
		t.Errorf("Row(2) = %+v, want %+v", row, want)
	}
}

func TestLiveSample_JSON_OmitsAbsent(t *testing.T) {
	ts := 100.0
	data, err := json.Marshal(LiveSample{Time: &ts})
	if err != nil {
		t.Fatalf("Failed to marshal LiveSample: %v", err)
	}
	if string(data) != `{"time":100}` {
		t.Errorf("Expected only time to be encoded, got %s", data)
	}
}

func TestCursorEvent_JSON(t *testing.T) {
	var event CursorEvent
	if err := json.Unmarshal([]byte(`{"kind":"drag","point":{"longitude":8.5,"latitude":47.3}}`), &event); err != nil {
		t.Fatalf("Failed to unmarshal CursorEvent: %v", err)
	}
	if event.Kind != CursorEventDrag || event.Point == nil || event.Index != nil {
		t.Errorf("Unexpected event: %+v", event)
	}
	if event.Point.Latitude != 47.3 {
		t.Errorf("Expected latitude 47.3, got %v", event.Point.Latitude)
	}
}

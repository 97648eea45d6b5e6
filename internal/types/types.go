package types

import (
	"time"
)

// Point is a geographic position in degrees
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Frame holds the seven aligned telemetry channels
type Frame struct {
	Altitude  []float64 `json:"altitude"`
	Speed     []float64 `json:"speed"`
	Heading   []float64 `json:"heading"`
	Climb     []float64 `json:"climb"`
	Time      []float64 `json:"time"`
	Longitude []float64 `json:"longitude"`
	Latitude  []float64 `json:"latitude"`
}

// Len returns the number of samples in the frame
func (f *Frame) Len() int {
	return len(f.Time)
}

// Aligned reports whether every channel has the same length
func (f *Frame) Aligned() bool {
	n := len(f.Time)
	return len(f.Altitude) == n && len(f.Speed) == n && len(f.Heading) == n &&
		len(f.Climb) == n && len(f.Longitude) == n && len(f.Latitude) == n
}

// Prefix returns a frame view over the first n samples
func (f *Frame) Prefix(n int) Frame {
	return Frame{
		Altitude:  f.Altitude[:n:n],
		Speed:     f.Speed[:n:n],
		Heading:   f.Heading[:n:n],
		Climb:     f.Climb[:n:n],
		Time:      f.Time[:n:n],
		Longitude: f.Longitude[:n:n],
		Latitude:  f.Latitude[:n:n],
	}
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() Frame {
	cp := func(s []float64) []float64 {
		return append([]float64(nil), s...)
	}
	return Frame{
		Altitude:  cp(f.Altitude),
		Speed:     cp(f.Speed),
		Heading:   cp(f.Heading),
		Climb:     cp(f.Climb),
		Time:      cp(f.Time),
		Longitude: cp(f.Longitude),
		Latitude:  cp(f.Latitude),
	}
}

// Points derives the geographic track from the longitude/latitude channels
func (f *Frame) Points() []Point {
	points := make([]Point, len(f.Longitude))
	for i := range points {
		points[i] = Point{Longitude: f.Longitude[i], Latitude: f.Latitude[i]}
	}
	return points
}

// Sample is one row of a frame
type Sample struct {
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Climb     float64 `json:"climb"`
	Time      float64 `json:"time"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Row returns the sample at index i
func (f *Frame) Row(i int) Sample {
	return Sample{
		Altitude:  f.Altitude[i],
		Speed:     f.Speed[i],
		Heading:   f.Heading[i],
		Climb:     f.Climb[i],
		Time:      f.Time[i],
		Longitude: f.Longitude[i],
		Latitude:  f.Latitude[i],
	}
}

// ColdPayload is the /store/before document. Any element may be null.
type ColdPayload struct {
	Altitude  []*float64 `json:"altitude"`
	Speed     []*float64 `json:"speed"`
	Heading   []*float64 `json:"heading"`
	Climb     []*float64 `json:"climb"`
	Time      []*float64 `json:"time"`
	Longitude []*float64 `json:"longitude"`
	Latitude  []*float64 `json:"latitude"`
}

// LiveSample is the /store/now document; nil fields are absent
type LiveSample struct {
	Altitude  *float64 `json:"altitude,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Climb     *float64 `json:"climb,omitempty"`
	Time      *float64 `json:"time,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
}

// CursorEventKind distinguishes the two producers of the current index
type CursorEventKind string

const (
	CursorEventDrag  CursorEventKind = "drag"
	CursorEventScrub CursorEventKind = "scrub"
)

// CursorEvent is a drag or scrub gesture sent by the view layer
type CursorEvent struct {
	Kind  CursorEventKind `json:"kind"`
	Point *Point          `json:"point,omitempty"`
	Index *int            `json:"index,omitempty"`
}

// RenderState is what the map and chart views consume on every change
type RenderState struct {
	SessionID      string    `json:"session_id"`
	Version        uint64    `json:"version"`
	Index          int       `json:"index"`
	Length         int       `json:"length"`
	AtTrailingEdge bool      `json:"at_trailing_edge"`
	Current        Sample    `json:"current"`
	UTCOffset      float64   `json:"utc_offset"`
	Frame          Frame     `json:"frame"`
	UpdatedAt      time.Time `json:"updated_at"`
}

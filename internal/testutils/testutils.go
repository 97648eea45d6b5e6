package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// Float returns a pointer to v, for building payloads with absent values
func Float(v float64) *float64 {
	return &v
}

// Floats converts values to present payload elements
func Floats(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// MockColdPayload builds a complete n-sample trace heading north-east from
// (lon0, lat0) in 0.01 degree steps, one sample per second.
func MockColdPayload(n int, lon0, lat0 float64) *types.ColdPayload {
	p := &types.ColdPayload{}
	for i := 0; i < n; i++ {
		f := float64(i)
		p.Time = append(p.Time, Float(1_600_000_000+f))
		p.Altitude = append(p.Altitude, Float(400+10*f))
		p.Speed = append(p.Speed, Float(5+f))
		p.Heading = append(p.Heading, Float(45))
		p.Climb = append(p.Climb, Float(2))
		p.Longitude = append(p.Longitude, Float(lon0+0.01*f))
		p.Latitude = append(p.Latitude, Float(lat0+0.01*f))
	}
	return p
}

// MockLiveSample builds a live sample with only time and position present
func MockLiveSample(ts, lon, lat float64) *types.LiveSample {
	return &types.LiveSample{
		Time:      Float(ts),
		Longitude: Float(lon),
		Latitude:  Float(lat),
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
		}
	}
}

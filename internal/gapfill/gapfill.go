package gapfill

// Reference position used when a whole coordinate channel is missing
const (
	ReferenceLongitude = 8.55301
	ReferenceLatitude  = 47.35257
)

// Per-channel fallbacks for wholly absent channels
const (
	FallbackAltitude  = 0.0
	FallbackSpeed     = 0.0
	FallbackHeading   = 0.0
	FallbackClimb     = 0.0
	FallbackLongitude = ReferenceLongitude
	FallbackLatitude  = ReferenceLatitude
)

// Fill replaces absent (nil) values with the nearest present neighbor,
// preferring the next present value and falling back to the previous one.
// If no value in the channel is present, every position becomes fallback.
func Fill(channel []*float64, fallback float64) []float64 {
	n := len(channel)
	out := make([]float64, n)

	// Backward pass: next present value at or after i
	next := make([]*float64, n)
	var seen *float64
	for i := n - 1; i >= 0; i-- {
		if channel[i] != nil {
			seen = channel[i]
		}
		next[i] = seen
	}

	// No present value anywhere
	if seen == nil {
		for i := range out {
			out[i] = fallback
		}
		return out
	}

	var prev *float64
	for i := 0; i < n; i++ {
		switch {
		case channel[i] != nil:
			out[i] = *channel[i]
			prev = channel[i]
		case next[i] != nil:
			out[i] = *next[i]
		default:
			out[i] = *prev
		}
	}
	return out
}

// Present reports whether any value in the channel is present
func Present(channel []*float64) bool {
	for _, v := range channel {
		if v != nil {
			return true
		}
	}
	return false
}

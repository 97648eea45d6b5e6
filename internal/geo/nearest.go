package geo

import (
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// SquaredDistance is the squared Euclidean distance in lon/lat degrees.
// It is not geodesic; it is only used to snap within a map viewport.
func SquaredDistance(a, b types.Point) float64 {
	dx := a.Longitude - b.Longitude
	dy := a.Latitude - b.Latitude
	return dx*dx + dy*dy
}

// Nearest returns the index of the point closest to query. The lowest index
// wins ties. It returns -1 for an empty sequence.
func Nearest(points []types.Point, query types.Point) int {
	best := -1
	var bestDist float64
	for i, p := range points {
		d := SquaredDistance(p, query)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Midpoint returns the arithmetic mean of two points
func Midpoint(a, b types.Point) types.Point {
	return types.Point{
		Longitude: 0.5 * (a.Longitude + b.Longitude),
		Latitude:  0.5 * (a.Latitude + b.Latitude),
	}
}

// InitialIndex places the cursor on the sample nearest to the midpoint of the
// first and last points of the trace.
func InitialIndex(points []types.Point) int {
	if len(points) == 0 {
		return -1
	}
	return Nearest(points, Midpoint(points[0], points[len(points)-1]))
}

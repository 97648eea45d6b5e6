package timectx

import (
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// Lookup resolves the time zone of a geographic point. ok is false when the
// point has no unambiguous zone.
type Lookup interface {
	Zone(longitude, latitude float64) (loc *time.Location, ok bool)
}

// cellSize is the lon/lat grid (degrees) zone lookups are cached on
const cellSize = 0.01

type cell struct {
	lon, lat int64
}

type zoneEntry struct {
	loc *time.Location
	ok  bool
}

// Context derives UTC offsets for samples of the trace
type Context struct {
	lookup Lookup
	cache  *lru.Cache[cell, zoneEntry]
}

// New creates a Context. cacheSize bounds the number of cached zone cells.
func New(lookup Lookup, cacheSize int) (*Context, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[cell, zoneEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone cache: %w", err)
	}
	return &Context{lookup: lookup, cache: cache}, nil
}

// UTCOffset returns the UTC offset in hours at timestamp (Unix seconds) for
// the given point. Unresolvable points yield 0.
func (c *Context) UTCOffset(timestamp float64, p types.Point) float64 {
	if c == nil || c.lookup == nil {
		return 0.0
	}

	key := cell{
		lon: int64(math.Round(p.Longitude / cellSize)),
		lat: int64(math.Round(p.Latitude / cellSize)),
	}
	entry, hit := c.cache.Get(key)
	if !hit {
		loc, ok := c.lookup.Zone(p.Longitude, p.Latitude)
		entry = zoneEntry{loc: loc, ok: ok && loc != nil}
		c.cache.Add(key, entry)
	}
	if !entry.ok {
		return 0.0
	}

	return OffsetAt(entry.loc, timestamp)
}

// OffsetAt returns the offset of loc in hours at timestamp (Unix seconds)
func OffsetAt(loc *time.Location, timestamp float64) float64 {
	sec, frac := math.Modf(timestamp)
	t := time.Unix(int64(sec), int64(frac*1e9)).In(loc)
	_, offset := t.Zone()
	return float64(offset) / 3600.0
}

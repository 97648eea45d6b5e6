package timectx

import (
	"fmt"
	"time"

	"github.com/ringsaturn/tzf"
)

// TZFLookup resolves zones from the tzf polygon data set
type TZFLookup struct {
	finder tzf.F
}

// NewTZFLookup loads the default tzf finder
func NewTZFLookup() (*TZFLookup, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone finder: %w", err)
	}
	return &TZFLookup{finder: finder}, nil
}

// Zone implements Lookup
func (l *TZFLookup) Zone(longitude, latitude float64) (*time.Location, bool) {
	name := l.finder.GetTimezoneName(longitude, latitude)
	if name == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

package cursor

import (
	"errors"
	"fmt"

	"github.com/saviobatista/ballometer-tracker/internal/geo"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// ErrIndexOutOfRange is returned in strict mode for an index outside [0, N-1]
var ErrIndexOutOfRange = errors.New("index out of range")

// Cursor is the single shared "current index" into the frame. Map drags and
// chart scrubs both write it; growth of the frame advances it only while it
// sits on the trailing edge.
type Cursor struct {
	index  int
	length int
	strict bool
}

// New creates a cursor over a frame of one sample. In strict mode an
// out-of-range scrub is an error, otherwise it is clamped.
func New(strict bool) *Cursor {
	return &Cursor{length: 1, strict: strict}
}

// Index returns the current index
func (c *Cursor) Index() int {
	return c.index
}

// Length returns the frame length the cursor was last validated against
func (c *Cursor) Length() int {
	return c.length
}

// AtTrailingEdge reports whether the cursor is on the last sample
func (c *Cursor) AtTrailingEdge() bool {
	return c.index == c.length-1
}

// Reset performs the initial transition for a freshly loaded frame: the
// cursor goes to the sample nearest the midpoint of the trace endpoints.
func (c *Cursor) Reset(points []types.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: empty frame", ErrIndexOutOfRange)
	}
	c.length = len(points)
	c.index = geo.InitialIndex(points)
	return nil
}

// Drag snaps the cursor to the sample nearest to the dragged marker position
func (c *Cursor) Drag(points []types.Point, p types.Point) (int, error) {
	if len(points) == 0 {
		return c.index, fmt.Errorf("%w: empty frame", ErrIndexOutOfRange)
	}
	c.length = len(points)
	c.index = geo.Nearest(points, p)
	return c.index, nil
}

// Scrub sets the cursor directly from a chart axis position
func (c *Cursor) Scrub(i int) (int, error) {
	if i < 0 || i >= c.length {
		if c.strict {
			return c.index, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, i, c.length-1)
		}
		i = clamp(i, c.length)
	}
	c.index = i
	return c.index, nil
}

// Grow records that the frame grew from oldLen to newLen samples. A cursor on
// the old trailing edge follows to the new one; otherwise it stays put.
func (c *Cursor) Grow(oldLen, newLen int) {
	if newLen <= oldLen {
		return
	}
	if c.index == oldLen-1 {
		c.index = newLen - 1
	}
	c.length = newLen
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

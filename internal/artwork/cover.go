package artwork

import (
	"image"
	"sync"
)

// State of a single cover load.
type State int

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Cover is a one-shot cover load. The first call to [Cover.Complete] wins.
type Cover struct {
	URL string

	mu        sync.Mutex
	done      chan struct{}
	state     State
	img       image.Image
	err       error
	callbacks []func()
}

// NewCover returns a pending cover for url.
func NewCover(url string) *Cover {
	return &Cover{URL: url, done: make(chan struct{})}
}

// Done is closed once the cover has completed.
func (c *Cover) Done() <-chan struct{} { return c.done }

// Complete records the outcome of the load. A nil image or a non-nil error completes the
// cover as [Failed]. It reports whether this call completed the cover.
func (c *Cover) Complete(img image.Image, err error) bool {
	c.mu.Lock()
	if c.state != Pending {
		c.mu.Unlock()
		return false
	}

	if err != nil || img == nil {
		c.state = Failed
		c.err = err
	} else {
		c.state = Loaded
		c.img = img
	}
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return true
}

// OnComplete registers fn to run once when the cover completes.
//
// It returns false, without registering, when the cover is already complete.
func (c *Cover) OnComplete(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Pending {
		return false
	}
	c.callbacks = append(c.callbacks, fn)
	return true
}

func (c *Cover) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Image returns the decoded cover, or nil unless the cover is [Loaded].
func (c *Cover) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img
}

// Err returns why the cover failed.
func (c *Cover) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

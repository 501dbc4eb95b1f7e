// Package lifecycle gates the capture and command pipelines on the remote
// session's connection state.
package lifecycle

import (
	"github.com/dkeye/Slate/internal/domain"
	"github.com/rs/zerolog/log"
)

// Controller is not safe for concurrent use; it lives on the session loop.
type Controller struct {
	state       domain.ConnectionState
	onConnected func()
	onTeardown  func()
	closed      bool
}

// New returns a controller in the Disconnected state. onConnected runs on
// every transition into Connected, onTeardown on every transition out of it.
func New(onConnected, onTeardown func()) *Controller {
	return &Controller{
		state:       domain.Disconnected,
		onConnected: onConnected,
		onTeardown:  onTeardown,
	}
}

func (c *Controller) State() domain.ConnectionState { return c.state }

func (c *Controller) Connected() bool { return c.state == domain.Connected }

// Set records a pushed state. Repeated values are ignored.
func (c *Controller) Set(next domain.ConnectionState) {
	if c.closed || next == c.state {
		return
	}
	prev := c.state
	c.state = next
	log.Debug().Str("module", "lifecycle").
		Stringer("from", prev).Stringer("to", next).
		Msg("connection state")

	switch {
	case next == domain.Connected:
		if c.onConnected != nil {
			c.onConnected()
		}
	case prev == domain.Connected:
		if c.onTeardown != nil {
			c.onTeardown()
		}
	}
}

// Close unmounts the controller. Teardown runs exactly once more whatever
// the current state, so an unmount always releases pipeline resources.
// Later calls and state pushes are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.state = domain.Disconnected
	if c.onTeardown != nil {
		c.onTeardown()
	}
}

package effects

import (
	"time"

	"github.com/dkeye/Slate/internal/clock"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	BaseDuration   = 4000 * time.Millisecond
	DefaultExtra   = 1.0
	NumberOfPieces = 200

	// maxExtraSeconds keeps the timer inside time.Duration.
	maxExtraSeconds = 24 * 60 * 60
)

// TotalDuration is how long one confetti trigger stays visible.
func TotalDuration(p domain.ConfettiPayload) time.Duration {
	extra := DefaultExtra
	if p.Duration != nil && *p.Duration != "" {
		if f, ok := leadingFloat(string(*p.Duration)); ok {
			extra = f
		}
	}
	extra = max(0, min(extra, maxExtraSeconds))
	return BaseDuration + time.Duration(extra*float64(time.Second))
}

// ConfettiState is a snapshot of the overlay.
type ConfettiState struct {
	Visible bool      `json:"visible"`
	Until   time.Time `json:"until,omitzero"`
	Pieces  int       `json:"pieces"`
}

// Confetti shows an overlay for a bounded time after each new trigger.
// The last trigger wins: a new one cancels the pending hide.
//
// Confetti is owned by one goroutine. Timer expiry is handed back through
// dispatch so it runs on that same goroutine.
type Confetti struct {
	clock    clock.Clock
	dispatch func(func())
	onChange func()

	timer   *clock.Timer
	gen     uint64
	lastID  string
	visible bool
	until   time.Time
}

// NewConfetti builds the overlay. onChange, if set, runs after every
// visibility change.
func NewConfetti(clk clock.Clock, dispatch func(func()), onChange func()) *Confetti {
	return &Confetti{clock: clk, dispatch: dispatch, onChange: onChange}
}

// Observe reacts to the latest confetti command. A command already seen
// (same LocalID) is ignored.
func (c *Confetti) Observe(cmd *domain.Command, connected bool) {
	if !connected || cmd == nil || cmd.LocalID == c.lastID {
		return
	}
	p, ok := cmd.Payload.(domain.ConfettiPayload)
	if !ok {
		return
	}
	c.lastID = cmd.LocalID
	c.stopTimer()

	total := TotalDuration(p)
	c.gen++
	gen := c.gen
	c.visible = true
	c.until = c.clock.Now().Add(total)
	c.timer = c.clock.AfterFunc(total, func() {
		c.dispatch(func() { c.expire(gen) })
	})
	log.Debug().Str("module", "effects").Str("id", cmd.LocalID).Dur("total", total).Msg("confetti shown")
	c.changed()
}

// Reset cancels any pending hide and hides the overlay.
func (c *Confetti) Reset() {
	c.stopTimer()
	c.gen++
	c.lastID = ""
	if c.visible {
		c.visible = false
		c.until = time.Time{}
		c.changed()
	}
}

func (c *Confetti) State() ConfettiState {
	if !c.visible {
		return ConfettiState{}
	}
	return ConfettiState{Visible: true, Until: c.until, Pieces: NumberOfPieces}
}

func (c *Confetti) expire(gen uint64) {
	// a newer trigger or a reset got here first
	if gen != c.gen {
		return
	}
	c.timer = nil
	c.visible = false
	c.until = time.Time{}
	c.changed()
}

func (c *Confetti) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Confetti) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

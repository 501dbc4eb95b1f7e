package capture

import (
	"image"

	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/media"
)

// Session is the per-connection capture state. It exists only while the
// remote session is connected.
type Session struct {
	participant core.Participant
	buffer      *image.RGBA
	dirty       bool
	last        core.Fingerprint
	track       *media.VideoTrack
	pub         core.Publication
	unmounted   int // consecutive ticks without a surface
}

func newSession(p core.Participant, size image.Rectangle) *Session {
	return &Session{
		participant: p,
		buffer:      image.NewRGBA(size),
		// the remote side has seen nothing yet
		dirty: true,
	}
}

func (s *Session) published() bool { return s.pub != nil }

// observe records a drained fingerprint and reports whether it changed.
func (s *Session) observe(fp core.Fingerprint) bool {
	if fp == s.last {
		return false
	}
	s.last = fp
	s.dirty = true
	return true
}

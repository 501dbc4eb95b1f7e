package app

import "github.com/dkeye/Slate/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// FrameKind tells the policy what kind of message could not be queued.
type FrameKind int

const (
	// FrameControl carries negotiation and replies; losing one breaks the
	// session.
	FrameControl FrameKind = iota
	// FrameOverlay is a view snapshot; the next one supersedes it.
	FrameOverlay
)

type Policy interface {
	OnBackPressure(sid core.SessionID, kind FrameKind) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ core.SessionID, kind FrameKind) BackpressureAction {
	if kind == FrameOverlay {
		return DropFrame
	}
	return KickMember
}

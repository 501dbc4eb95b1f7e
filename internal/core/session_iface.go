package core

import "github.com/dkeye/Slate/internal/domain"

type SessionID string

// MemberSession binds a remote peer to its signaling and media endpoints.
type MemberSession interface {
	Meta() *domain.Participant
	Signal() SignalConnection
	Media() MediaConnection
	UpdateSignal(SignalConnection) MemberSession
	UpdateMedia(MediaConnection) MemberSession
}

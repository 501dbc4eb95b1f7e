package core

import (
	"context"

	"github.com/dkeye/Slate/internal/domain"
	"github.com/pion/webrtc/v4"
)

type MediaConnection interface {
	Participant

	// Start configures internal callbacks and binds the connection lifetime to ctx.
	Start(ctx context.Context) error
	// Close should stop all underlying media resources.
	Close()
	IsClosed() bool
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	ApplyOfferAndCreateAnswer(webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	// ApplyAnswer completes a renegotiation started by the local side.
	ApplyAnswer(webrtc.SessionDescription) error
	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnRenegotiate is called with a local offer whenever tracks change
	// after the initial exchange.
	OnRenegotiate(func(webrtc.SessionDescription))
	// OnStateChange reports every transport state transition.
	OnStateChange(func(domain.ConnectionState))
	// OnMessage delivers inbound text messages keyed by topic.
	OnMessage(func(topic domain.Topic, text string))
	// OnClosed sets a callback for cleanup media session.
	OnClosed(func())
}

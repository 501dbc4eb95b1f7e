package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Slate/internal/app"
	"github.com/dkeye/Slate/internal/app/effects"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type overlayMessage struct {
	Type string       `json:"type"`
	View effects.View `json:"view"`
}

type offerMessage struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// BindMediaHandlers opens the broadcast session for sid and routes the
// connection's events into it.
func (o *Orchestrator) BindMediaHandlers(ctx context.Context, mc core.MediaConnection, sid core.SessionID) {
	sess := o.Sessions.Open(ctx, sid, mc, func(v effects.View) {
		o.Send(sid, app.FrameOverlay, overlayMessage{Type: "overlay", View: v})
	})

	mc.OnStateChange(func(st domain.ConnectionState) {
		if err := sess.SetState(st); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("state dropped")
		}
	})
	mc.OnMessage(func(topic domain.Topic, text string) {
		if err := sess.Deliver(topic, text); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("topic", string(topic)).Msg("command dropped")
		}
	})
	mc.OnRenegotiate(func(offer webrtc.SessionDescription) {
		o.Send(sid, app.FrameControl, offerMessage{Type: "offer", SDP: offer.SDP})
	})
	mc.OnClosed(func() {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("media closed")
		o.Sessions.Close(sid, sess)
	})
}

// OnMediaDisconnect releases the media side of sid.
func (o *Orchestrator) OnMediaDisconnect(sid core.SessionID) {
	o.cleanupMedia(sid)
}

func (o *Orchestrator) cleanupMedia(sid core.SessionID) {
	if s, ok := o.Sessions.Get(sid); ok {
		o.Sessions.Close(sid, s)
	}
	if sess, ok := o.Registry.GetSession(sid); ok {
		if mc := sess.Media(); mc != nil {
			mc.Close()
		}
	}
}

// Deliver feeds a command from a source other than the media connection.
func (o *Orchestrator) Deliver(sid core.SessionID, topic domain.Topic, text string) error {
	s, ok := o.Sessions.Get(sid)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, sid)
	}
	return s.Deliver(topic, text)
}

func (o *Orchestrator) Overlay(sid core.SessionID) (effects.View, bool) {
	s, ok := o.Sessions.Get(sid)
	if !ok {
		return effects.View{}, false
	}
	return s.View(), true
}

// Preview returns the latest frame published to sid.
func (o *Orchestrator) Preview(sid core.SessionID) ([]byte, bool) {
	s, ok := o.Sessions.Get(sid)
	if !ok {
		return nil, false
	}
	frame := s.LastFrame()
	return frame, frame != nil
}

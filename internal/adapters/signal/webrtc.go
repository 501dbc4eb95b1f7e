package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Slate/internal/adapters/rtc"
	"github.com/dkeye/Slate/internal/core"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) sendCandidate(c *WsSignalConn, ci webrtc.ICECandidateInit) {
	resp := struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid,omitempty"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
	}{
		Type:      "candidate",
		Candidate: ci.Candidate,
	}
	if ci.SDPMid != nil {
		resp.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		resp.SDPMLineIndex = *ci.SDPMLineIndex
	}
	ctl.sendJSON(c, resp)
}

type sdpPayload struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// handleOffer starts the media session. A second offer replaces the
// previous connection.
func (ctl *SignalWSController) handleOffer(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p sdpPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("offer: no session for")
		return
	}
	if old := sess.Media(); old != nil {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("offer: replacing media connection")
		old.Close()
	}

	wc, err := rtc.NewConnection(ctl.opts.API, ctl.opts.ICE, sid)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc new pc")
		ctl.sendError(conn, "media_unavailable")
		return
	}

	wc.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		ctl.sendCandidate(conn, ci)
	})

	ctl.Orch.BindMediaHandlers(ctx, wc, sid)

	if err = wc.Start(ctx); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc start")
		wc.Close()
		return
	}

	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  p.SDP,
	}

	answer, err := wc.ApplyOfferAndCreateAnswer(offer)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc apply offer")
		ctl.sendError(conn, "bad_offer")
		wc.Close()
		return
	}
	sess.UpdateMedia(wc)

	ctl.sendJSON(conn, sdpPayload{Type: "answer", SDP: answer.SDP})
}

// handleAnswer completes a renegotiation the server started.
func (ctl *SignalWSController) handleAnswer(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p sdpPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	mc := ctl.media(sid)
	if mc == nil {
		return
	}
	if err := mc.ApplyAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: p.SDP}); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("apply answer")
		ctl.sendError(conn, "bad_answer")
	}
}

func (ctl *SignalWSController) handleCandidate(
	sid core.SessionID,
	_ *WsSignalConn,
	data []byte,
) {
	type candidatePayload struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	var p candidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}

	cand := webrtc.ICECandidateInit{
		Candidate: p.Candidate,
	}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	mc := ctl.media(sid)
	if mc == nil {
		return
	}
	if err := mc.AddICECandidate(cand); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("add ice candidate")
	}
}

func (ctl *SignalWSController) media(sid core.SessionID) core.MediaConnection {
	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("no session for")
		return nil
	}
	mc := sess.Media()
	if mc == nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("no media connection for")
	}
	return mc
}

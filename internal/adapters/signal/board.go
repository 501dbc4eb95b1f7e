package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Slate/internal/app/orch"
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleCommand accepts a remote command over the signaling socket, for
// clients without a data channel.
func (ctl *SignalWSController) handleCommand(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p struct {
		Type  string       `json:"type"`
		Topic domain.Topic `json:"topic"`
		Text  string       `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad command payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	err := ctl.Orch.Deliver(sid, p.Topic, p.Text)
	switch {
	case err == nil:
	case errors.Is(err, orch.ErrNoSession):
		ctl.sendError(conn, "no_media_session")
	default:
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("command")
	}
}

func (ctl *SignalWSController) handleDraw(
	conn *WsSignalConn,
	data []byte,
) {
	if !conn.draws.Allow() {
		ctl.sendError(conn, "rate_limited")
		return
	}
	var p struct {
		Type   string        `json:"type"`
		Stroke canvas.Stroke `json:"stroke"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad draw payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	applied, err := ctl.Orch.Draw(p.Stroke)
	if err != nil {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "invalid_stroke",
			"cause": err.Error(),
		})
		return
	}
	ctl.sendJSON(conn, map[string]any{
		"type": "drawn",
		"id":   applied.ID,
	})
}

func (ctl *SignalWSController) handleClear(
	conn *WsSignalConn,
) {
	ctl.Orch.ClearBoard()
	ctl.sendJSON(conn, map[string]any{
		"type": "cleared",
	})
}

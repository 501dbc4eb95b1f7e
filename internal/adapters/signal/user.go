package signal

import (
	"github.com/dkeye/Slate/internal/app/effects"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	resp := struct {
		Type      string              `json:"type"`
		SID       core.SessionID      `json:"sid"`
		Publisher *domain.Participant `json:"publisher,omitempty"`
		Media     bool                `json:"media"`
		View      *effects.View       `json:"view,omitempty"`
	}{
		Type:      "whoami",
		SID:       sid,
		Publisher: ctl.opts.Publisher,
	}
	if sess, ok := ctl.Orch.Registry.GetSession(sid); ok {
		resp.Media = sess.Media() != nil
	}
	if v, ok := ctl.Orch.Overlay(sid); ok {
		resp.View = &v
	}
	ctl.sendJSON(conn, resp)
}

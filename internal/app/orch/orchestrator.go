package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Slate/internal/app"
	"github.com/dkeye/Slate/internal/app/broadcast"
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/dkeye/Slate/internal/core"
	"github.com/rs/zerolog/log"
)

var ErrNoSession = errors.New("no such session")

type Orchestrator struct {
	Registry *app.Registry
	Sessions *broadcast.Manager
	Board    *canvas.Board
	Policy   app.Policy
}

// Send queues v as JSON on the signaling connection of sid. A full queue
// is resolved by the policy.
func (o *Orchestrator) Send(sid core.SessionID, kind app.FrameKind, v any) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	sig := sess.Signal()
	if sig == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal frame")
		return
	}
	if err := sig.TrySend(data); err == nil || o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(sid, kind) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("signal queue full, kicking")
		o.KickBySID(sid)
	case app.DropFrame, app.NoAction:
	}
}

// KickBySID drops the media session of sid and cancels its signaling.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.cleanupMedia(sid)
	o.Registry.Cancel(sid)
}

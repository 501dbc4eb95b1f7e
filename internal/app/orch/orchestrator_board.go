package orch

import (
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/rs/zerolog/log"
)

// Draw applies one stroke from a local client.
func (o *Orchestrator) Draw(s canvas.Stroke) (canvas.Stroke, error) {
	applied, err := o.Board.Apply(s)
	if err != nil {
		return s, err
	}
	log.Debug().Str("module", "orch").Str("stroke", applied.ID).Int("points", len(applied.Points)).Msg("stroke applied")
	return applied, nil
}

func (o *Orchestrator) ClearBoard() {
	o.Board.Clear()
	log.Info().Str("module", "orch").Msg("board cleared")
}

// SetMounted toggles pixel access to the board.
func (o *Orchestrator) SetMounted(mounted bool) {
	if mounted {
		o.Board.Mount()
		return
	}
	o.Board.Unmount()
}

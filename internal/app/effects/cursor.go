package effects

import "github.com/dkeye/Slate/internal/domain"

// Cursor is the remote pointer overlay. X and Y are percentages of the
// board size, clamped to [0, 100].
type Cursor struct {
	Visible bool `json:"visible"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
}

// RenderCursor derives the overlay from the latest cursor command. It
// renders nothing when disconnected, with no command, when the command is
// hidden, or when a coordinate is not numeric.
func RenderCursor(cmd *domain.Command, connected bool) Cursor {
	if !connected || cmd == nil {
		return Cursor{}
	}
	p, ok := cmd.Payload.(domain.CursorPayload)
	if !ok || !p.Visible {
		return Cursor{}
	}
	x, okX := leadingInt(string(p.X))
	y, okY := leadingInt(string(p.Y))
	if !okX || !okY {
		return Cursor{}
	}
	return Cursor{Visible: true, X: clamp(x, 0, 100), Y: clamp(y, 0, 100)}
}

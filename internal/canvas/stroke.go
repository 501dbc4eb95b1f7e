package canvas

import (
	"errors"
	"fmt"
)

const (
	MaxStrokePoints = 4096
	MaxStrokeWidth  = 200
)

var ErrInvalidStroke = errors.New("invalid stroke")

type Point struct {
	X float64 `json:"x" cbor:"x"`
	Y float64 `json:"y" cbor:"y"`
}

// Stroke is one freehand line on the board.
type Stroke struct {
	ID     string  `json:"id" cbor:"id"`
	Points []Point `json:"points" cbor:"points"`
	Color  string  `json:"color" cbor:"color"`
	Width  float64 `json:"width" cbor:"width"`
}

func (s Stroke) Validate() error {
	if len(s.Points) == 0 {
		return fmt.Errorf("%w: no points", ErrInvalidStroke)
	}
	if len(s.Points) > MaxStrokePoints {
		return fmt.Errorf("%w: %d points exceeds %d", ErrInvalidStroke, len(s.Points), MaxStrokePoints)
	}
	if s.Width <= 0 || s.Width > MaxStrokeWidth {
		return fmt.Errorf("%w: width %.1f", ErrInvalidStroke, s.Width)
	}
	return nil
}

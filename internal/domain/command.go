package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Topic identifies the schema and intent of an inbound command.
type Topic string

const (
	TopicCursor   Topic = "CURSOR_MOVE"
	TopicConfetti Topic = "THROW_CONFETTI"
)

// Command is one decoded inbound message. LocalID is assigned once per raw
// arrival and is never derived from the payload.
type Command struct {
	LocalID string  `json:"local_id"`
	Topic   Topic   `json:"topic"`
	Payload Payload `json:"payload"`
}

// Payload is closed over the types in this file.
type Payload interface {
	isPayload()
}

type CursorPayload struct {
	X       Scalar `json:"x"`
	Y       Scalar `json:"y"`
	Visible bool   `json:"visible"`
}

type ConfettiPayload struct {
	Duration *Scalar `json:"duration,omitempty"`
}

func (CursorPayload) isPayload()   {}
func (ConfettiPayload) isPayload() {}

// Scalar holds a JSON string or number as its textual form, so "42" and 42
// decode to the same value.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Scalar(str)
		return nil
	}
	var num float64
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("scalar: want string or number, got %s", b)
	}
	*s = Scalar(strconv.FormatFloat(num, 'f', -1, 64))
	return nil
}

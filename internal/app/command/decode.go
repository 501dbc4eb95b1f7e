// Package command turns raw topic-keyed messages into the latest typed
// command per topic.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Slate/internal/domain"
)

var (
	ErrUnknownTopic = errors.New("unknown topic")
	ErrNotObject    = errors.New("not a JSON object")
)

// Decode parses text according to topic. Anything but a JSON object,
// null included, yields no command.
func Decode(topic domain.Topic, text string) (domain.Payload, error) {
	switch topic {
	case domain.TopicCursor:
		p, err := decodeObject[domain.CursorPayload](text)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		return *p, nil
	case domain.TopicConfetti:
		p, err := decodeObject[domain.ConfettiPayload](text)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		return *p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
}

func decodeObject[T any](text string) (*T, error) {
	var p *T
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotObject
	}
	return p, nil
}

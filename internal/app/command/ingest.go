package command

import (
	"github.com/dkeye/Slate/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// channel holds the latest command of one topic. nil means no valid
// command.
type channel struct {
	current  *domain.Command
	arrivals uint64
}

// Ingest is owned by the session loop and is not safe for concurrent use.
type Ingest struct {
	channels  map[domain.Topic]*channel
	subs      map[domain.Topic][]func(*domain.Command)
	connected bool
	newID     func() string
}

// NewIngest accepts messages for the given topics only.
func NewIngest(topics ...domain.Topic) *Ingest {
	in := &Ingest{
		channels: make(map[domain.Topic]*channel, len(topics)),
		subs:     make(map[domain.Topic][]func(*domain.Command)),
		newID:    uuid.NewString,
	}
	for _, t := range topics {
		in.channels[t] = &channel{}
	}
	return in
}

// Deliver records one raw arrival. It returns the command now current for
// topic, which is nil when text did not decode.
func (in *Ingest) Deliver(topic domain.Topic, text string) *domain.Command {
	ch, ok := in.channels[topic]
	if !ok {
		log.Debug().Str("module", "command").Str("topic", string(topic)).Msg("unknown topic dropped")
		return nil
	}
	if !in.connected {
		log.Debug().Str("module", "command").Str("topic", string(topic)).Msg("not connected, dropped")
		return nil
	}
	ch.arrivals++

	var cmd *domain.Command
	payload, err := Decode(topic, text)
	if err != nil {
		log.Warn().Err(err).Str("module", "command").Str("topic", string(topic)).Msg("undecodable command")
	} else {
		cmd = &domain.Command{LocalID: in.newID(), Topic: topic, Payload: payload}
	}
	ch.current = cmd

	for _, fn := range in.subs[topic] {
		fn(cmd)
	}
	return cmd
}

// Latest returns the current command for topic and whether the session is
// connected. Callers treat a disconnected result as no command.
func (in *Ingest) Latest(topic domain.Topic) (*domain.Command, bool) {
	ch, ok := in.channels[topic]
	if !ok || !in.connected {
		return nil, in.connected
	}
	return ch.current, true
}

// Arrivals counts raw messages accepted for topic.
func (in *Ingest) Arrivals(topic domain.Topic) uint64 {
	if ch, ok := in.channels[topic]; ok {
		return ch.arrivals
	}
	return 0
}

// SetConnected opens or closes the gate. Closing drops every held command.
func (in *Ingest) SetConnected(connected bool) {
	in.connected = connected
	if connected {
		return
	}
	for _, ch := range in.channels {
		ch.current = nil
	}
}

func (in *Ingest) Connected() bool { return in.connected }

// Subscribe calls fn after every accepted arrival on topic.
func (in *Ingest) Subscribe(topic domain.Topic, fn func(*domain.Command)) {
	in.subs[topic] = append(in.subs[topic], fn)
}

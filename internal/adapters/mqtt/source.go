// Package mqtt feeds remote commands published on an MQTT broker into
// broadcast sessions. Topics are <prefix>/<sid>/<command topic>.
package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// commands are lossy; only the latest per topic matters
const qos = 0

var ErrBadTopic = errors.New("malformed command topic")

// Deliverer is the session side of the source.
type Deliverer interface {
	Deliver(sid core.SessionID, topic domain.Topic, text string) error
}

type Options struct {
	Broker   string
	ClientID string
	Prefix   string
}

type Source struct {
	client paho.Client
	prefix string
	sink   Deliverer
}

// Connect dials the broker and subscribes to every session's commands.
func Connect(opts Options, sink Deliverer) (*Source, error) {
	s := &Source{prefix: strings.Trim(opts.Prefix, "/"), sink: sink}

	co := paho.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectTimeout(10 * time.Second)
	co.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("module", "mqtt").Msg("connection lost")
	})
	// resubscribe after every (re)connect; the session is clean
	co.SetOnConnectHandler(func(c paho.Client) {
		if token := c.Subscribe(s.filter(), qos, s.handle); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("module", "mqtt").Str("filter", s.filter()).Msg("subscribe failed")
			return
		}
		log.Info().Str("module", "mqtt").Str("filter", s.filter()).Msg("subscribed")
	})

	s.client = paho.NewClient(co)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", token.Error())
	}
	return s, nil
}

func (s *Source) filter() string { return s.prefix + "/+/+" }

func (s *Source) handle(_ paho.Client, msg paho.Message) {
	sid, topic, err := ParseTopic(s.prefix, msg.Topic())
	if err != nil {
		log.Debug().Err(err).Str("module", "mqtt").Str("topic", msg.Topic()).Msg("ignored")
		return
	}
	if err := s.sink.Deliver(sid, topic, string(msg.Payload())); err != nil {
		log.Debug().Err(err).Str("module", "mqtt").Str("sid", string(sid)).Str("topic", string(topic)).Msg("command dropped")
	}
}

// ParseTopic splits <prefix>/<sid>/<topic>.
func ParseTopic(prefix, name string) (core.SessionID, domain.Topic, error) {
	rest, ok := strings.CutPrefix(name, prefix+"/")
	if !ok {
		return "", "", fmt.Errorf("%w: %q lacks prefix %q", ErrBadTopic, name, prefix)
	}
	sid, topic, ok := strings.Cut(rest, "/")
	if !ok || sid == "" || topic == "" || strings.Contains(topic, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrBadTopic, name)
	}
	return core.SessionID(sid), domain.Topic(topic), nil
}

func (s *Source) Close() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}

package rtc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/dkeye/Slate/internal/media"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var ErrForeignPublication = errors.New("publication not created by this connection")

// Connection is the server side of one remote session's PeerConnection.
type Connection struct {
	pc     *webrtc.PeerConnection
	sid    core.SessionID
	cancel context.CancelFunc
	closed atomic.Bool

	mu            sync.RWMutex
	onICE         func(webrtc.ICECandidateInit)
	onRenegotiate func(webrtc.SessionDescription)
	onState       func(domain.ConnectionState)
	onMessage     func(domain.Topic, string)
	onClosed      func()
	negotiated    bool
	closedOnce    sync.Once
}

func DefaultWebRTCConfig(iceURLs []string) webrtc.Configuration {
	if len(iceURLs) == 0 {
		iceURLs = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: iceURLs}},
	}
}

// NewAPI returns a pion API that knows the default codecs plus the
// built-in JPEG video format.
func NewAPI() (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register default codecs: %w", err)
	}
	if err := m.RegisterCodec(media.CodecParameters(), webrtc.RTPCodecTypeVideo); err != nil {
		return nil, fmt.Errorf("register jpeg codec: %w", err)
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m)), nil
}

func NewConnection(api *webrtc.API, cfg webrtc.Configuration, sid core.SessionID) (*Connection, error) {
	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &Connection{pc: pc, sid: sid}, nil
}

// MapState converts pion's peer connection state.
func MapState(s webrtc.PeerConnectionState) domain.ConnectionState {
	switch s {
	case webrtc.PeerConnectionStateNew, webrtc.PeerConnectionStateConnecting:
		return domain.Connecting
	case webrtc.PeerConnectionStateConnected:
		return domain.Connected
	case webrtc.PeerConnectionStateDisconnected:
		return domain.Reconnecting
	case webrtc.PeerConnectionStateFailed:
		return domain.Failed
	default:
		return domain.Disconnected
	}
}

func (c *Connection) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "webrtc").Str("sid", string(c.sid)).Str("peer_connection_state", s.String()).Msg("Peer state")
		c.mu.RLock()
		fn := c.onState
		c.mu.RUnlock()
		if fn != nil {
			fn(MapState(s))
		}
		if s == webrtc.PeerConnectionStateFailed || s == webrtc.PeerConnectionStateClosed {
			c.fireClosed()
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		c.mu.RLock()
		fn := c.onICE
		c.mu.RUnlock()
		if cand != nil && fn != nil {
			fn(cand.ToJSON())
		}
	})

	c.pc.OnNegotiationNeeded(func() {
		c.mu.RLock()
		ready := c.negotiated
		c.mu.RUnlock()
		if !ready || c.IsClosed() {
			return
		}
		offer, err := c.createOffer()
		if err != nil {
			log.Error().Err(err).Str("module", "webrtc").Str("sid", string(c.sid)).Msg("renegotiation offer")
			return
		}
		c.mu.RLock()
		fn := c.onRenegotiate
		c.mu.RUnlock()
		if fn != nil {
			fn(*offer)
		}
	})

	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		topic := domain.Topic(dc.Label())
		log.Info().Str("module", "webrtc").Str("sid", string(c.sid)).Str("topic", string(topic)).Msg("data channel opened")
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			if !msg.IsString {
				return
			}
			c.mu.RLock()
			fn := c.onMessage
			c.mu.RUnlock()
			if fn != nil {
				fn(topic, string(msg.Data))
			}
		})
	})

	return nil
}

func (c *Connection) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	<-gatherComplete

	c.mu.Lock()
	c.negotiated = true
	c.mu.Unlock()
	return c.pc.LocalDescription(), nil
}

func (c *Connection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *Connection) createOffer() (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	<-gatherComplete
	return c.pc.LocalDescription(), nil
}

type publication struct {
	sender *webrtc.RTPSender
	name   string
}

func (p *publication) TrackName() string { return p.name }

func (c *Connection) PublishTrack(track webrtc.TrackLocal) (core.Publication, error) {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return nil, err
	}
	// drain RTCP so the interceptors keep running
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return &publication{sender: sender, name: track.ID()}, nil
}

func (c *Connection) UnpublishTrack(pub core.Publication) error {
	p, ok := pub.(*publication)
	if !ok {
		return ErrForeignPublication
	}
	if c.IsClosed() {
		return nil
	}
	if err := c.pc.RemoveTrack(p.sender); err != nil && !errors.Is(err, webrtc.ErrConnectionClosed) {
		return err
	}
	return nil
}

func (c *Connection) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "webrtc").Str("sid", string(c.sid)).Msg("close error")
	} else {
		log.Info().Str("module", "webrtc").Str("sid", string(c.sid)).Msg("closed")
	}
	c.fireClosed()
}

func (c *Connection) IsClosed() bool { return c.closed.Load() }

func (c *Connection) fireClosed() {
	c.closedOnce.Do(func() {
		c.mu.RLock()
		fn := c.onClosed
		c.mu.RUnlock()
		if fn != nil {
			fn()
		}
	})
}

func (c *Connection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

func (c *Connection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.mu.Lock()
	c.onICE = fn
	c.mu.Unlock()
}

func (c *Connection) OnRenegotiate(fn func(webrtc.SessionDescription)) {
	c.mu.Lock()
	c.onRenegotiate = fn
	c.mu.Unlock()
}

func (c *Connection) OnStateChange(fn func(domain.ConnectionState)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// OnMessage receives text messages from every data channel the remote
// opens. The channel label is the topic.
func (c *Connection) OnMessage(fn func(domain.Topic, string)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

// OnClosed sets application-level callback for cleanup.
func (c *Connection) OnClosed(fn func()) {
	c.mu.Lock()
	c.onClosed = fn
	c.mu.Unlock()
}

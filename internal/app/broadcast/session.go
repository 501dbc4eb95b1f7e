// Package broadcast runs one event loop per remote session. The loop owns
// the lifecycle controller, the capture pipeline, the command channels and
// the overlays; everything else talks to it by posting events.
package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Slate/internal/app/capture"
	"github.com/dkeye/Slate/internal/app/command"
	"github.com/dkeye/Slate/internal/app/effects"
	"github.com/dkeye/Slate/internal/app/lifecycle"
	"github.com/dkeye/Slate/internal/clock"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/dkeye/Slate/internal/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("session event queue full")
	ErrClosed       = errors.New("session closed")
)

const eventQueueSize = 256

type Config struct {
	Capture capture.Config
}

type Deps struct {
	Clock   clock.Clock
	Surface core.Surface
	Tracks  capture.TrackFactory
}

type Session struct {
	sid         core.SessionID
	participant core.Participant
	clk         clock.Clock
	interval    time.Duration
	logger      zerolog.Logger

	events chan func()
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	// loop-owned
	ctrl     *lifecycle.Controller
	pipeline *capture.Pipeline
	ingest   *command.Ingest
	inbox    *command.Inbox
	confetti *effects.Confetti
	ticker   *clock.Ticker
	tickC    <-chan time.Time
	unsub    func()
	onView   func(effects.View)

	view atomic.Pointer[effects.View]
}

// NewSession builds an idle session. Run starts its loop.
func NewSession(sid core.SessionID, participant core.Participant, cfg Config, deps Deps) *Session {
	s := &Session{
		sid:         sid,
		participant: participant,
		clk:         deps.Clock,
		logger:      log.With().Str("module", "broadcast").Str("sid", string(sid)).Logger(),
		events:      make(chan func(), eventQueueSize),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	s.pipeline = capture.New(cfg.Capture, deps.Surface, deps.Tracks)
	s.interval = media.FrameInterval(s.pipeline.Config().FPS)
	s.ingest = command.NewIngest(domain.TopicCursor, domain.TopicConfetti)
	s.inbox = command.NewInbox(domain.TopicCursor, domain.TopicConfetti)
	s.confetti = effects.NewConfetti(deps.Clock, s.dispatch, s.refreshView)
	s.ctrl = lifecycle.New(s.onConnected, s.onTeardown)

	s.ingest.Subscribe(domain.TopicConfetti, func(cmd *domain.Command) {
		s.confetti.Observe(cmd, s.ingest.Connected())
	})
	s.ingest.Subscribe(domain.TopicCursor, func(*domain.Command) { s.refreshView() })

	s.unsub = deps.Surface.Subscribe(func(fp core.Fingerprint) {
		if s.pipeline.Notify(fp) {
			_ = s.tryPost(s.pipeline.Drain)
		}
	})
	s.view.Store(&effects.View{})
	return s
}

func (s *Session) ID() core.SessionID { return s.sid }

// OnView registers fn for overlay changes. fn runs on the loop and must
// not block. Call before Run.
func (s *Session) OnView(fn func(effects.View)) { s.onView = fn }

// Run processes events until ctx is done or Close is called.
func (s *Session) Run(ctx context.Context) {
	defer s.shutdown()

	s.logger.Info().Msg("session loop started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case fn := <-s.events:
			fn()
		case t := <-s.tickC:
			s.onTick(t)
		}
	}
}

// Done is closed once the loop has released everything.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the loop without waiting for it. The controller's teardown
// runs before Done closes.
func (s *Session) Close() {
	s.once.Do(func() { close(s.stop) })
}

// SetState pushes a transport state change.
func (s *Session) SetState(state domain.ConnectionState) error {
	return s.post(func() { s.ctrl.Set(state) })
}

// Deliver queues one raw message. An undrained message of the same topic
// is replaced, so only the latest arrival reaches the loop.
func (s *Session) Deliver(topic domain.Topic, text string) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	first, err := s.inbox.Offer(topic, text)
	if err != nil {
		s.logger.Debug().Err(err).Str("topic", string(topic)).Msg("command dropped")
		return nil
	}
	if !first {
		return nil
	}
	return s.post(func() { s.drainCommand(topic) })
}

// View returns the latest overlay snapshot.
func (s *Session) View() effects.View { return *s.view.Load() }

func (s *Session) LastFrame() []byte { return s.pipeline.LastFrame() }

func (s *Session) Stats() capture.Stats { return s.pipeline.Stats() }

// Sync waits until every event posted before it, and any tick already
// delivered, has been handled.
func (s *Session) Sync(ctx context.Context) error {
	ack := make(chan struct{})
	if err := s.post(func() {
		select {
		case t := <-s.tickC:
			s.onTick(t)
		default:
		}
		close(ack)
	}); err != nil {
		return err
	}
	select {
	case <-ack:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) post(fn func()) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- fn:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

func (s *Session) tryPost(fn func()) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- fn:
		return nil
	default:
		return ErrBackpressure
	}
}

// dispatch hands timer callbacks back to the loop.
func (s *Session) dispatch(fn func()) {
	if err := s.post(fn); err != nil {
		s.logger.Debug().Err(err).Msg("timer event dropped")
	}
}

func (s *Session) drainCommand(topic domain.Topic) {
	if text, ok := s.inbox.Take(topic); ok {
		s.ingest.Deliver(topic, text)
	}
}

func (s *Session) onConnected() {
	s.logger.Info().Msg("connected, starting pipelines")
	s.ingest.SetConnected(true)
	if err := s.pipeline.Start(s.participant); err != nil {
		s.logger.Warn().Err(err).Msg("publish failed, retrying on tick")
	}
	s.ticker = s.clk.NewTicker(s.interval)
	s.tickC = s.ticker.C
	s.refreshView()
}

func (s *Session) onTeardown() {
	s.logger.Info().Stringer("state", s.ctrl.State()).Msg("tearing down pipelines")
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker, s.tickC = nil, nil
	}
	s.pipeline.Stop()
	s.ingest.SetConnected(false)
	s.confetti.Reset()
	s.refreshView()
}

func (s *Session) onTick(time.Time) {
	if err := s.pipeline.Tick(); err != nil {
		s.logger.Warn().Err(err).Msg("capture tick failed")
	}
}

func (s *Session) refreshView() {
	cmd, connected := s.ingest.Latest(domain.TopicCursor)
	next := effects.View{
		Connected: s.ctrl.Connected(),
		Cursor:    effects.RenderCursor(cmd, connected),
		Confetti:  s.confetti.State(),
	}
	if prev := s.view.Load(); prev != nil && *prev == next {
		return
	}
	s.view.Store(&next)
	if s.onView != nil {
		s.onView(next)
	}
}

func (s *Session) shutdown() {
	s.ctrl.Close()
	s.unsub()
	close(s.done)
	s.logger.Info().Msg("session loop stopped")
}

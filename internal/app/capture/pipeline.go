// Package capture turns drawing-surface mutations into a fixed-rate
// outbound video track.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/media"
	"github.com/rs/zerolog/log"
)

var ErrNoSession = errors.New("capture session not started")

// UnmountGrace is how many consecutive ticks may find the surface
// unmounted before the track is unpublished. Shorter gaps keep the track.
const UnmountGrace = 30

type Config struct {
	TrackName string
	StreamID  string
	FPS       int
	// Width and Height size the outbound buffer. Zero means the surface size.
	Width  int
	Height int
}

// TrackFactory builds the outbound track for a new session.
type TrackFactory func(name, streamID string, fps int) (*media.VideoTrack, error)

// JPEGTracks returns a TrackFactory producing JPEG tracks at quality q.
func JPEGTracks(q int) TrackFactory {
	enc := media.NewJPEGEncoder(q)
	return func(name, streamID string, fps int) (*media.VideoTrack, error) {
		return media.NewVideoTrack(name, streamID, fps, enc)
	}
}

type Stats struct {
	Ticks     uint64 `json:"ticks"`
	Frames    uint64 `json:"frames"`
	Changes   uint64 `json:"changes"`
	Publishes uint64 `json:"publishes"`
}

// Pipeline is driven from a single goroutine except for Notify, LastFrame
// and Stats, which are safe from anywhere.
type Pipeline struct {
	cfg      Config
	surface  core.Surface
	newTrack TrackFactory
	inbox    Inbox
	sess     *Session

	live      atomic.Pointer[media.VideoTrack]
	ticks     atomic.Uint64
	frames    atomic.Uint64
	changes   atomic.Uint64
	publishes atomic.Uint64
}

func New(cfg Config, surface core.Surface, newTrack TrackFactory) *Pipeline {
	if cfg.FPS <= 0 {
		cfg.FPS = media.DefaultFPS
	}
	return &Pipeline{cfg: cfg, surface: surface, newTrack: newTrack}
}

func (p *Pipeline) Config() Config { return p.cfg }

// Notify is the drawing engine's change callback. It reports whether the
// inbox was empty, so callers can schedule a single drain.
func (p *Pipeline) Notify(fp core.Fingerprint) bool {
	return p.inbox.Offer(fp)
}

// Drain moves the pending notification, if any, into the session.
func (p *Pipeline) Drain() {
	fp, ok := p.inbox.Take()
	if !ok || p.sess == nil {
		return
	}
	if p.sess.observe(fp) {
		p.changes.Add(1)
	}
}

// Start opens a capture session for participant, tearing down any
// previous one first. The track is published now if the surface is
// mounted, otherwise on the first tick that finds it mounted.
func (p *Pipeline) Start(participant core.Participant) error {
	p.Stop()
	p.sess = newSession(participant, p.bufferRect())
	if !p.surface.Mounted() {
		log.Info().Str("module", "capture").Msg("surface not mounted, publish deferred")
		return nil
	}
	return p.publish()
}

// Stop unpublishes the track and releases the buffer. Safe to call at
// any time, any number of times.
func (p *Pipeline) Stop() {
	s := p.sess
	if s == nil {
		return
	}
	p.sess = nil
	p.unpublish(s)
	s.buffer = nil
}

// Tick is one step of the fixed-rate loop.
func (p *Pipeline) Tick() error {
	s := p.sess
	if s == nil {
		return nil
	}
	p.ticks.Add(1)
	p.Drain()

	if !p.surface.Mounted() {
		s.unmounted++
		if s.published() && s.unmounted >= UnmountGrace {
			log.Info().Str("module", "capture").Int("ticks", s.unmounted).Msg("surface gone, unpublishing")
			p.unpublish(s)
		}
		return nil
	}
	s.unmounted = 0
	if !s.published() {
		if err := p.publish(); err != nil {
			return err
		}
	}
	if !s.dirty {
		return nil
	}
	if err := p.surface.CopyInto(s.buffer); err != nil {
		if errors.Is(err, core.ErrNotMounted) {
			return nil
		}
		return fmt.Errorf("copy surface: %w", err)
	}
	s.dirty = false
	if err := s.track.WriteFrame(s.buffer); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	p.frames.Add(1)
	return nil
}

// Active reports whether a capture session exists.
func (p *Pipeline) Active() bool { return p.sess != nil }

// Published reports whether a track is currently published.
func (p *Pipeline) Published() bool { return p.sess != nil && p.sess.published() }

// Dirty reports whether a change is waiting for the next tick.
func (p *Pipeline) Dirty() bool { return p.sess != nil && p.sess.dirty }

// LastFrame returns the latest encoded frame of the live track.
func (p *Pipeline) LastFrame() []byte {
	if t := p.live.Load(); t != nil {
		return t.LastFrame()
	}
	return nil
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Ticks:     p.ticks.Load(),
		Frames:    p.frames.Load(),
		Changes:   p.changes.Load(),
		Publishes: p.publishes.Load(),
	}
}

func (p *Pipeline) publish() error {
	s := p.sess
	if s == nil {
		return ErrNoSession
	}
	track, err := p.newTrack(p.cfg.TrackName, p.cfg.StreamID, p.cfg.FPS)
	if err != nil {
		return fmt.Errorf("create track: %w", err)
	}
	pub, err := s.participant.PublishTrack(track.Local())
	if err != nil {
		track.Stop()
		return fmt.Errorf("publish track %q: %w", p.cfg.TrackName, err)
	}
	s.track, s.pub = track, pub
	// a fresh track has carried nothing yet
	s.dirty = true
	p.live.Store(track)
	p.publishes.Add(1)
	log.Info().Str("module", "capture").Str("track", pub.TrackName()).Int("fps", p.cfg.FPS).Msg("track published")
	return nil
}

func (p *Pipeline) unpublish(s *Session) {
	p.live.Store(nil)
	if s.pub != nil {
		if err := s.participant.UnpublishTrack(s.pub); err != nil {
			log.Warn().Err(err).Str("module", "capture").Str("track", s.pub.TrackName()).Msg("unpublish failed")
		}
	}
	if s.track != nil && s.track.Stop() {
		log.Info().Str("module", "capture").Str("track", s.track.Name()).Uint64("frames", s.track.Frames()).Msg("track stopped")
	}
	s.track, s.pub = nil, nil
}

func (p *Pipeline) bufferRect() image.Rectangle {
	if p.cfg.Width > 0 && p.cfg.Height > 0 {
		return image.Rect(0, 0, p.cfg.Width, p.cfg.Height)
	}
	b := p.surface.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy())
}

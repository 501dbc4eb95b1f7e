package media

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

var ErrTrackStopped = errors.New("track stopped")

type TrackState int32

const (
	TrackStateLive TrackState = iota
	TrackStateStopped
)

// VideoTrack is one outbound video track fed frame by frame.
type VideoTrack struct {
	local      *webrtc.TrackLocalStaticRTP
	encoder    Encoder
	packetizer rtp.Packetizer
	samples    uint32 // RTP clock ticks per frame

	state     atomic.Int32 // TrackStateLive by default
	frames    atomic.Uint64
	lastFrame atomic.Pointer[[]byte]
}

// NewVideoTrack creates a track named name within stream streamID, paced
// for fps frames per second.
func NewVideoTrack(name, streamID string, fps int, enc Encoder) (*VideoTrack, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", fps)
	}
	local, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: enc.MimeType(), ClockRate: videoClock},
		name, streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("new local track: %w", err)
	}
	return &VideoTrack{
		local:      local,
		encoder:    enc,
		packetizer: newPacketizer(enc.MimeType(), rand.Uint32()),
		samples:    uint32(videoClock / fps),
	}, nil
}

// DefaultFPS is the capture rate used when none is configured.
const DefaultFPS = 30

// FrameInterval is the wall-clock spacing between frames at fps. A
// non-positive fps means DefaultFPS.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

func (t *VideoTrack) Name() string { return t.local.ID() }

func (t *VideoTrack) Local() webrtc.TrackLocal { return t.local }

func (t *VideoTrack) State() TrackState { return TrackState(t.state.Load()) }

func (t *VideoTrack) Live() bool { return t.State() == TrackStateLive }

// Frames returns how many frames were written.
func (t *VideoTrack) Frames() uint64 { return t.frames.Load() }

// LastFrame returns the most recent encoded frame, or nil.
func (t *VideoTrack) LastFrame() []byte {
	if p := t.lastFrame.Load(); p != nil {
		return *p
	}
	return nil
}

// WriteFrame encodes img and writes it as one RTP burst.
func (t *VideoTrack) WriteFrame(img image.Image) error {
	if !t.Live() {
		return ErrTrackStopped
	}
	data, err := t.encoder.Encode(img)
	if err != nil {
		return err
	}
	t.lastFrame.Store(&data)
	t.frames.Add(1)
	for _, pkt := range t.packetizer.Packetize(data, t.samples) {
		if err := t.local.WriteRTP(pkt); err != nil {
			return fmt.Errorf("write rtp: %w", err)
		}
	}
	return nil
}

// Stop marks the track stopped. It reports whether this call stopped it.
func (t *VideoTrack) Stop() bool {
	return t.state.CompareAndSwap(int32(TrackStateLive), int32(TrackStateStopped))
}

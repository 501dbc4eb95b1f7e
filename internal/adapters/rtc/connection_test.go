package rtc

import (
	"testing"

	"github.com/dkeye/Slate/internal/domain"
	"github.com/pion/webrtc/v4"
)

func TestMapState(t *testing.T) {
	cases := map[webrtc.PeerConnectionState]domain.ConnectionState{
		webrtc.PeerConnectionStateNew:          domain.Connecting,
		webrtc.PeerConnectionStateConnecting:   domain.Connecting,
		webrtc.PeerConnectionStateConnected:    domain.Connected,
		webrtc.PeerConnectionStateDisconnected: domain.Reconnecting,
		webrtc.PeerConnectionStateFailed:       domain.Failed,
		webrtc.PeerConnectionStateClosed:       domain.Disconnected,
	}
	for in, want := range cases {
		if got := MapState(in); got != want {
			t.Errorf("MapState(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestConnectionPublishAndClose(t *testing.T) {
	api, err := NewAPI()
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewConnection(api, webrtc.Configuration{}, "sid-1")
	if err != nil {
		t.Fatal(err)
	}

	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}, "excalidraw", "slate",
	)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := c.PublishTrack(track)
	if err != nil {
		t.Fatalf("PublishTrack: %v", err)
	}
	if pub.TrackName() != "excalidraw" {
		t.Fatalf("TrackName = %q", pub.TrackName())
	}
	if err := c.UnpublishTrack(pub); err != nil {
		t.Fatalf("UnpublishTrack: %v", err)
	}

	closed := 0
	c.OnClosed(func() { closed++ })
	c.Close()
	c.Close()
	if !c.IsClosed() || closed != 1 {
		t.Fatalf("closed=%v callbacks=%d", c.IsClosed(), closed)
	}
	if err := c.UnpublishTrack(pub); err != nil {
		t.Fatalf("UnpublishTrack after close: %v", err)
	}
}

package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Slate/internal/app"
	"github.com/dkeye/Slate/internal/app/broadcast"
	"github.com/dkeye/Slate/internal/app/capture"
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/dkeye/Slate/internal/clock"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/pion/webrtc/v4"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, fr := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(fr, &env)
		out = append(out, env.Type)
	}
	return out
}

type publication string

func (p publication) TrackName() string { return string(p) }

type fakeMedia struct {
	mu          sync.Mutex
	published   int
	unpublished int
	closed      bool

	onState   func(domain.ConnectionState)
	onMessage func(domain.Topic, string)
	onRenego  func(webrtc.SessionDescription)
	onClosed  func()
}

func (m *fakeMedia) PublishTrack(track webrtc.TrackLocal) (core.Publication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published++
	return publication(track.ID()), nil
}

func (m *fakeMedia) UnpublishTrack(core.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unpublished++
	return nil
}

func (m *fakeMedia) Start(context.Context) error { return nil }

func (m *fakeMedia) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	fn := m.onClosed
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *fakeMedia) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *fakeMedia) AddICECandidate(webrtc.ICECandidateInit) error { return nil }

func (m *fakeMedia) ApplyOfferAndCreateAnswer(webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	return &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "answer"}, nil
}

func (m *fakeMedia) ApplyAnswer(webrtc.SessionDescription) error      { return nil }
func (m *fakeMedia) OnICECandidate(func(webrtc.ICECandidateInit))     {}
func (m *fakeMedia) OnRenegotiate(fn func(webrtc.SessionDescription)) { m.onRenego = fn }
func (m *fakeMedia) OnStateChange(fn func(domain.ConnectionState))    { m.onState = fn }
func (m *fakeMedia) OnMessage(fn func(domain.Topic, string))          { m.onMessage = fn }
func (m *fakeMedia) OnClosed(fn func())                               { m.onClosed = fn }

func (m *fakeMedia) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published, m.unpublished
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Unix(0, 0))
	board := canvas.NewBoard(32, 32, "#ffffff")
	mgr := broadcast.NewManager(
		broadcast.Config{Capture: capture.Config{TrackName: "excalidraw", StreamID: "slate", FPS: 30}},
		broadcast.Deps{Clock: clk, Surface: board, Tracks: capture.JPEGTracks(80)},
	)
	t.Cleanup(mgr.Shutdown)
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Sessions: mgr,
		Board:    board,
		Policy:   app.SimplePolicy{},
	}, clk
}

func bind(t *testing.T, o *Orchestrator, sid core.SessionID) (*fakeSignal, *fakeMedia) {
	t.Helper()
	p, err := domain.NewParticipant("guest")
	if err != nil {
		t.Fatal(err)
	}
	sig, mc := &fakeSignal{}, &fakeMedia{}
	sess := core.NewMemberSession(p).UpdateSignal(sig).UpdateMedia(mc)
	o.Registry.BindSignal(sid, sess, nil)
	o.BindMediaHandlers(context.Background(), mc, sid)
	return sig, mc
}

func settle(t *testing.T, o *Orchestrator, sid core.SessionID) {
	t.Helper()
	s, ok := o.Sessions.Get(sid)
	if !ok {
		t.Fatalf("no session %s", sid)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestOrchestratorMediaFlow(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	sig, mc := bind(t, o, "sid-1")

	mc.onState(domain.Connected)
	settle(t, o, "sid-1")
	if pub, _ := mc.counts(); pub != 1 {
		t.Fatalf("published = %d, want 1", pub)
	}

	mc.onMessage(domain.TopicCursor, `{"x":"25","y":"75","visible":true}`)
	settle(t, o, "sid-1")
	v, ok := o.Overlay("sid-1")
	if !ok || !v.Cursor.Visible || v.Cursor.X != 25 || v.Cursor.Y != 75 {
		t.Fatalf("overlay = %+v %v", v, ok)
	}

	if err := o.Deliver("sid-1", domain.TopicConfetti, `{"duration":"1"}`); err != nil {
		t.Fatal(err)
	}
	settle(t, o, "sid-1")
	if v, _ := o.Overlay("sid-1"); !v.Confetti.Visible {
		t.Fatal("confetti from Deliver not shown")
	}

	types := sig.types()
	if len(types) < 3 || types[0] != "overlay" {
		t.Fatalf("signal frames = %v", types)
	}

	mc.onRenego(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"})
	if got := sig.types(); got[len(got)-1] != "offer" {
		t.Fatalf("renegotiation not forwarded: %v", got)
	}

	mc.onState(domain.Reconnecting)
	settle(t, o, "sid-1")
	if _, unpub := mc.counts(); unpub != 1 {
		t.Fatalf("unpublished = %d, want 1", unpub)
	}
}

func TestOrchestratorDeliverUnknownSession(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	if err := o.Deliver("nobody", domain.TopicCursor, `{}`); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if _, ok := o.Overlay("nobody"); ok {
		t.Fatal("overlay for unknown session")
	}
}

func TestOrchestratorMediaCloseEndsSession(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	_, mc := bind(t, o, "sid-1")
	s, _ := o.Sessions.Get("sid-1")

	mc.Close()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session loop did not stop")
	}
	if _, ok := o.Sessions.Get("sid-1"); ok {
		t.Fatal("session still registered")
	}
}

func TestOrchestratorKickOnControlBackpressure(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	canceled := make(chan struct{})
	p, _ := domain.NewParticipant("guest")
	sig, mc := &fakeSignal{full: true}, &fakeMedia{}
	o.Registry.BindSignal("sid-1", core.NewMemberSession(p).UpdateSignal(sig).UpdateMedia(mc), func() { close(canceled) })
	o.BindMediaHandlers(context.Background(), mc, "sid-1")

	// overlay frames are dropped quietly
	o.Send("sid-1", app.FrameOverlay, map[string]string{"type": "overlay"})
	if mc.IsClosed() {
		t.Fatal("overlay backpressure kicked the member")
	}

	o.Send("sid-1", app.FrameControl, map[string]string{"type": "pong"})
	if !mc.IsClosed() {
		t.Fatal("control backpressure did not close media")
	}
	select {
	case <-canceled:
	default:
		t.Fatal("signaling not canceled")
	}
}

func TestOrchestratorBoard(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	before := o.Board.Fingerprint()
	if _, err := o.Draw(canvas.Stroke{Points: []canvas.Point{{X: 1, Y: 1}, {X: 20, Y: 20}}, Width: 3}); err != nil {
		t.Fatal(err)
	}
	if o.Board.Fingerprint() == before {
		t.Fatal("Draw did not change the board")
	}
	o.ClearBoard()
	if o.Board.Fingerprint() != before {
		t.Fatal("ClearBoard did not restore the empty board")
	}
	o.SetMounted(false)
	if o.Board.Mounted() {
		t.Fatal("still mounted")
	}
	o.SetMounted(true)
}

package broadcast

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dkeye/Slate/internal/app/capture"
	"github.com/dkeye/Slate/internal/app/effects"
	"github.com/dkeye/Slate/internal/core"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Info is a read-only summary of one session.
type Info struct {
	SID   core.SessionID `json:"sid"`
	View  effects.View   `json:"view"`
	Stats capture.Stats  `json:"stats"`
}

type Manager struct {
	cfg  Config
	deps Deps

	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	wg       conc.WaitGroup
}

func NewManager(cfg Config, deps Deps) *Manager {
	return &Manager{
		cfg:      cfg,
		deps:     deps,
		sessions: make(map[core.SessionID]*Session),
	}
}

// Open creates a session for sid and starts its loop. An existing session
// for sid is closed first.
func (m *Manager) Open(ctx context.Context, sid core.SessionID, participant core.Participant, onView func(effects.View)) *Session {
	s := NewSession(sid, participant, m.cfg, m.deps)
	s.OnView(onView)

	m.mu.Lock()
	old, replaced := m.sessions[sid]
	m.sessions[sid] = s
	m.mu.Unlock()

	if replaced {
		log.Info().Str("module", "broadcast").Str("sid", string(sid)).Msg("replacing existing session")
		old.Close()
	}
	m.wg.Go(func() { s.Run(ctx) })
	return s
}

func (m *Manager) Get(sid core.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// Close stops the session of sid, but only if it is still s. A newer
// session under the same sid is left alone.
func (m *Manager) Close(sid core.SessionID, s *Session) {
	m.mu.Lock()
	cur, ok := m.sessions[sid]
	if ok && cur == s {
		delete(m.sessions, sid)
	}
	m.mu.Unlock()
	s.Close()
}

func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for sid, s := range m.sessions {
		out = append(out, Info{SID: sid, View: s.View(), Stats: s.Stats()})
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b Info) int { return cmp.Compare(a.SID, b.SID) })
	return out
}

// Shutdown closes every session and waits for their loops to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for sid, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, sid)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	m.wg.Wait()
}

package core

import (
	"sync"

	"github.com/dkeye/Slate/internal/domain"
)

// memberSession implements MemberSession by pairing meta + transports.
type memberSession struct {
	meta *domain.Participant

	mu     sync.RWMutex
	signal SignalConnection
	media  MediaConnection
}

func NewMemberSession(meta *domain.Participant) MemberSession {
	return &memberSession{meta: meta}
}

func (m *memberSession) Meta() *domain.Participant { return m.meta }

func (m *memberSession) Signal() SignalConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.signal
}

func (m *memberSession) Media() MediaConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.media
}

func (m *memberSession) UpdateSignal(s SignalConnection) MemberSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signal = s
	return m
}

func (m *memberSession) UpdateMedia(mc MediaConnection) MemberSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media = mc
	return m
}

package command

import (
	"sync"

	"github.com/dkeye/Slate/internal/domain"
)

// Inbox holds at most one undrained raw message per topic. A newer Offer
// overwrites the pending text, so a backlog never outlives the latest
// arrival.
type Inbox struct {
	mu      sync.Mutex
	known   map[domain.Topic]struct{}
	pending map[domain.Topic]string
}

func NewInbox(topics ...domain.Topic) *Inbox {
	in := &Inbox{
		known:   make(map[domain.Topic]struct{}, len(topics)),
		pending: make(map[domain.Topic]string, len(topics)),
	}
	for _, t := range topics {
		in.known[t] = struct{}{}
	}
	return in
}

// Offer stores text as the pending message of topic. It reports whether
// the slot was empty, in which case the caller schedules one Take.
func (in *Inbox) Offer(topic domain.Topic, text string) (wasEmpty bool, err error) {
	if _, ok := in.known[topic]; !ok {
		return false, ErrUnknownTopic
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	_, full := in.pending[topic]
	in.pending[topic] = text
	return !full, nil
}

func (in *Inbox) Take(topic domain.Topic) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	text, ok := in.pending[topic]
	if ok {
		delete(in.pending, topic)
	}
	return text, ok
}

package capture

import (
	"sync"

	"github.com/dkeye/Slate/internal/core"
)

// Inbox holds at most one pending change notification. A newer Offer
// overwrites an undrained one.
type Inbox struct {
	mu   sync.Mutex
	fp   core.Fingerprint
	full bool
}

// Offer stores fp and reports whether the slot was empty before.
func (i *Inbox) Offer(fp core.Fingerprint) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	wasEmpty := !i.full
	i.fp = fp
	i.full = true
	return wasEmpty
}

func (i *Inbox) Take() (core.Fingerprint, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.full {
		return core.Fingerprint{}, false
	}
	i.full = false
	return i.fp, true
}

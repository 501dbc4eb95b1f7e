package command

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Slate/internal/domain"
)

func TestInboxKeepsLatestPerTopic(t *testing.T) {
	in := NewInbox(domain.TopicCursor, domain.TopicConfetti)
	if _, ok := in.Take(domain.TopicCursor); ok {
		t.Fatal("empty inbox returned a message")
	}

	first, err := in.Offer(domain.TopicCursor, "a")
	if err != nil || !first {
		t.Fatalf("first Offer = %v, %v", first, err)
	}
	again, _ := in.Offer(domain.TopicCursor, "b")
	if again {
		t.Fatal("second Offer reported an empty slot")
	}
	if ok, _ := in.Offer(domain.TopicConfetti, "c"); !ok {
		t.Fatal("topics share a slot")
	}

	if got, ok := in.Take(domain.TopicCursor); !ok || got != "b" {
		t.Fatalf("Take = %q %v, want latest", got, ok)
	}
	if _, ok := in.Take(domain.TopicCursor); ok {
		t.Fatal("slot not emptied")
	}
	if ok, _ := in.Offer(domain.TopicCursor, "d"); !ok {
		t.Fatal("drained slot not reported empty")
	}
}

func TestInboxUnknownTopic(t *testing.T) {
	in := NewInbox(domain.TopicCursor)
	if _, err := in.Offer("NOPE", "{}"); !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("err = %v, want ErrUnknownTopic", err)
	}
}

func TestInboxConcurrentOffersScheduleOnce(t *testing.T) {
	in := NewInbox(domain.TopicCursor)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		scheduled int
	)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := in.Offer(domain.TopicCursor, fmt.Sprint(i)); ok {
				mu.Lock()
				scheduled++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if scheduled != 1 {
		t.Fatalf("scheduled = %d, want 1", scheduled)
	}
}

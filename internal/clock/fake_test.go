package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_AfterFuncFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(5*time.Second, func() { fired++ })

	c.Advance(4999 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired = %d before deadline, want 0", fired)
	}
	c.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d at deadline, want 1", fired)
	}
	c.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("fired = %d after deadline, want 1", fired)
	}
}

func TestFakeClock_StopPreventsFire(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if timer.Stop() {
		t.Fatal("second Stop returned true")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount = %d, want 0", got)
	}
}

func TestFakeClock_CallbackMayScheduleTimer(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(time.Second, func() {
		order = append(order, "first")
		c.AfterFunc(time.Second, func() { order = append(order, "second") })
	})

	c.Advance(time.Second)
	c.Advance(time.Second)
	if len(order) != 2 || order[1] != "second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

func TestFakeClock_TickerDeliversOncePerInterval(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	ticks := 0
	for i := 0; i < 30; i++ {
		c.Advance(33 * time.Millisecond)
		select {
		case at := <-ticker.C:
			ticks++
			if want := epoch.Add(time.Duration(i+1) * 33 * time.Millisecond); !at.Equal(want) {
				t.Fatalf("tick %d at %v, want %v", i, at, want)
			}
		default:
		}
	}
	if ticks != 30 {
		t.Fatalf("ticks = %d, want 30", ticks)
	}
}

func TestFakeClock_TickerDropsWhenConsumerLags(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(10 * time.Millisecond)

	c.Advance(100 * time.Millisecond)
	<-ticker.C
	select {
	case <-ticker.C:
		t.Fatal("ticker queued more than one tick")
	default:
	}

	ticker.Stop()
	c.Advance(100 * time.Millisecond)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker delivered a tick")
	default:
	}
}

func TestFakeClock_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		c.AfterFunc(time.Second, func() {})
		close(done)
	}()
	c.WaitForTimers(1)
	<-done
	if got := c.PendingCount(); got != 1 {
		t.Fatalf("PendingCount = %d, want 1", got)
	}
}

package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	received := make(chan Event, 1)
	defer bus.Subscribe(func(e Event) { received <- e })()

	bus.Publish(NewEvent(EventReminderDue, map[string]any{"cron": "0 9 * * *"}))

	select {
	case e := <-received:
		if e.Type != EventReminderDue {
			t.Errorf("type: got %q", e.Type)
		}
		if e.Payload["cron"] != "0 9 * * *" {
			t.Errorf("payload: %v", e.Payload)
		}
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Errorf("event missing id or timestamp: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestBusTypeFilter(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	due := make(chan Event, 2)
	all := make(chan Event, 2)
	defer bus.Subscribe(func(e Event) { due <- e }, EventReminderDue)()
	defer bus.Subscribe(func(e Event) { all <- e })()

	bus.Publish(NewEvent(EventReminderSent, nil))

	select {
	case e := <-all:
		if e.Type != EventReminderSent {
			t.Errorf("type: got %q", e.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("untyped subscriber never notified")
	}

	select {
	case e := <-due:
		t.Errorf("typed subscriber got mismatched event: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	received := make(chan Event, 2)
	unsubscribe := bus.Subscribe(func(e Event) { received <- e })

	bus.Publish(NewEvent(EventReminderDue, nil))
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("first event never delivered")
	}

	unsubscribe()
	bus.Publish(NewEvent(EventReminderDue, nil))
	select {
	case e := <-received:
		t.Errorf("received after unsubscribe: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusPublishAfterCloseIsDropped(t *testing.T) {
	bus := NewBus(10)

	received := make(chan Event, 1)
	bus.Subscribe(func(e Event) { received <- e })

	bus.Close()
	bus.Close() // idempotent
	bus.Publish(NewEvent(EventReminderDue, nil))

	select {
	case e := <-received:
		t.Errorf("received after close: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewEventIDsAreUnique(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e := NewEvent(EventReminderDue, nil)
				mu.Lock()
				if seen[e.ID] {
					t.Errorf("duplicate event id %q", e.ID)
				}
				seen[e.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

package scheduler

import (
	"testing"
	"time"

	"github.com/dohr-michael/nag/internal/events"
)

func TestParseCron(t *testing.T) {
	cases := []struct {
		expr string
		ok   bool
	}{
		{"0 9 * * *", true},
		{"*/15 * * * *", true},
		{"30 18 * * 1-5", true},
		{"not a cron", false},
		{"", false},
		{"0 9 * *", false}, // 4 fields
	}
	for _, tc := range cases {
		_, err := ParseCron(tc.expr)
		if tc.ok && err != nil {
			t.Errorf("ParseCron(%q): %v", tc.expr, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseCron(%q): expected error", tc.expr)
		}
	}
}

func TestCronNext(t *testing.T) {
	c, err := ParseCron("0 9 * * *")
	if err != nil {
		t.Fatal(err)
	}

	from := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	next := c.Next(from)
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next: got %v, want %v", next, want)
	}

	// Past today's activation, the next one is tomorrow.
	next = c.Next(time.Date(2026, 3, 10, 9, 0, 1, 0, time.UTC))
	want = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next after activation: got %v, want %v", next, want)
	}
}

func TestCronMatches(t *testing.T) {
	c, err := ParseCron("0 9 * * *")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 3, 10, 9, 0, 42, 0, time.UTC), true}, // within the minute
		{time.Date(2026, 3, 10, 9, 1, 0, 0, time.UTC), false},
		{time.Date(2026, 3, 10, 8, 59, 59, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := c.Matches(tc.at); got != tc.want {
			t.Errorf("Matches(%v): got %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestSchedulerTickPublishesOncePerMinute(t *testing.T) {
	c, err := ParseCron("* * * * *")
	if err != nil {
		t.Fatal(err)
	}

	bus := events.NewBus(8)
	defer bus.Close()

	fired := make(chan events.Event, 8)
	unsubscribe := bus.Subscribe(func(e events.Event) {
		fired <- e
	}, events.EventReminderDue)
	defer unsubscribe()

	s := New(c, bus)
	at := time.Date(2026, 3, 10, 9, 0, 5, 0, time.UTC)
	s.tick(at)
	s.tick(at.Add(30 * time.Second)) // same minute, must not re-fire
	s.tick(at.Add(time.Minute))      // next minute fires again

	got := 0
	timeout := time.After(2 * time.Second)
	for got < 2 {
		select {
		case e := <-fired:
			if e.Type != events.EventReminderDue {
				t.Errorf("event type: %q", e.Type)
			}
			got++
		case <-timeout:
			t.Fatalf("received %d events, want 2", got)
		}
	}

	select {
	case <-time.After(50 * time.Millisecond):
	case e := <-fired:
		t.Errorf("unexpected extra event: %+v", e)
	}
}

func TestSchedulerTickNoMatchNoEvent(t *testing.T) {
	c, err := ParseCron("0 9 * * *")
	if err != nil {
		t.Fatal(err)
	}

	bus := events.NewBus(8)
	defer bus.Close()

	fired := make(chan events.Event, 1)
	defer bus.Subscribe(func(e events.Event) { fired <- e }, events.EventReminderDue)()

	s := New(c, bus)
	s.tick(time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC))

	select {
	case e := <-fired:
		t.Errorf("unexpected event: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

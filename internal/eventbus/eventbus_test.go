package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan RecentSearchSavedEvent, 1)
	b.Subscribe(EventRecentSearchSaved, func(e DomainEvent) {
		if ev, ok := e.(RecentSearchSavedEvent); ok {
			got <- ev
		}
	})

	b.Publish(RecentSearchSavedEvent{Organization: "acme", Query: "is:unresolved"})

	select {
	case ev := <-got:
		assert.Equal(t, "acme", ev.Organization)
		assert.Equal(t, "is:unresolved", ev.Query)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestSubscribersOnlySeeTheirType(t *testing.T) {
	b := New()
	defer b.Close()

	var errorsSeen atomic.Int32
	b.Subscribe(EventError, func(e DomainEvent) { errorsSeen.Add(1) })

	saved := make(chan struct{}, 1)
	b.Subscribe(EventSearchSubmitted, func(e DomainEvent) { saved <- struct{}{} })

	b.Publish(SearchSubmittedEvent{Query: "browser:chrome"})

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
	assert.Equal(t, int32(0), errorsSeen.Load())
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	var first atomic.Int32
	unsubscribe := b.Subscribe(EventSidebarToggled, func(e DomainEvent) { first.Add(1) })
	done := make(chan struct{}, 2)
	b.Subscribe(EventSidebarToggled, func(e DomainEvent) { done <- struct{}{} })

	unsubscribe()
	b.Publish(SidebarToggledEvent{Open: true})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining subscriber was not called")
	}
	// give a stray handler goroutine a moment to run
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	b := New()
	defer b.Close()

	b.Subscribe(EventError, func(e DomainEvent) { panic("boom") })
	ok := make(chan struct{}, 1)
	b.Subscribe(EventSearchSubmitted, func(e DomainEvent) { ok <- struct{}{} })

	b.Publish(ErrorEvent{Message: "first"})
	b.Publish(SearchSubmittedEvent{Query: "is:resolved"})

	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped after handler panic")
	}
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	b := NewWithBuffer(1).(*bus)
	b.Close()

	b.Publish(ErrorEvent{Message: "ignored after close"})
	require.Len(t, b.eventChan, 0)
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New()
	b.Close()
	assert.NotPanics(t, b.Close)
}

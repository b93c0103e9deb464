package broker

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish()

	select {
	case <-ch:
		// success
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected signal on channel")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	b.Publish()

	select {
	case <-ch:
		t.Fatal("should not receive after unsubscribe")
	case <-time.After(50 * time.Millisecond):
		// success
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish()

	for i, ch := range []chan struct{}{ch1, ch2} {
		select {
		case <-ch:
			// expected
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("subscriber %d should have received signal", i+1)
		}
	}
}

func TestRapidPublishesCoalesce(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Channel buffer is 1, so a burst collapses into a single pending signal.
	b.Publish()
	b.Publish()
	b.Publish()

	<-ch

	select {
	case <-ch:
		t.Fatal("expected at most one pending signal after a burst")
	case <-time.After(50 * time.Millisecond):
		// success
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	b := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := b.Subscribe()
			b.Unsubscribe(ch)
		}()
		go func() {
			defer wg.Done()
			b.Publish()
		}()
	}
	wg.Wait()
}

package events_test

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/events"
)

func newTestBus(bufSize int) *events.Bus {
	return events.NewBus(bufSize, slog.New(slog.DiscardHandler))
}

func statusEvent(status string) domain.ApplicationStatusUpdated {
	return domain.ApplicationStatusUpdated{
		ID:      uuid.New(),
		Company: "Acme",
		Status:  status,
	}
}

// receiveOne reads a single event with a bounded wait.
func receiveOne(t *testing.T, sub *events.Subscription) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBus_FanOut(t *testing.T) {
	bus := newTestBus(10)

	t.Run("publish with zero subscribers does not block", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			bus.Publish(statusEvent("Applied"))
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked with no subscribers")
		}
	})

	t.Run("every subscriber receives an equal event", func(t *testing.T) {
		subs := make([]*events.Subscription, 5)
		for i := range subs {
			subs[i] = bus.Subscribe()
			defer subs[i].Close()
		}

		want := statusEvent("Interview")
		bus.Publish(want)

		for _, sub := range subs {
			got := receiveOne(t, sub)
			assert.Equal(t, want, got)
		}
	})

	t.Run("subscriber attached after publish sees nothing", func(t *testing.T) {
		early := bus.Subscribe()
		defer early.Close()

		bus.Publish(statusEvent("Offer"))
		late := bus.Subscribe()
		defer late.Close()

		receiveOne(t, early)
		select {
		case ev := <-late.Events():
			t.Fatalf("late subscriber received %v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestBus_PerSubscriberFIFO(t *testing.T) {
	bus := newTestBus(1000)
	sub := bus.Subscribe()
	defer sub.Close()

	const n = 500
	for i := 0; i < n; i++ {
		bus.Publish(domain.ApplicationStatusUpdated{Company: "Acme", Status: fmt.Sprintf("s%d", i)})
	}

	for i := 0; i < n; i++ {
		ev := receiveOne(t, sub)
		got, ok := ev.(domain.ApplicationStatusUpdated)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("s%d", i), got.Status)
	}
}

func TestBus_ConcurrentPublishersPreserveEachOrder(t *testing.T) {
	bus := newTestBus(10000)
	sub := bus.Subscribe()
	defer sub.Close()

	const publishers = 4
	const perPublisher = 200

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				bus.Publish(domain.ApplicationStatusUpdated{
					Company: fmt.Sprintf("pub%d", p),
					Status:  fmt.Sprintf("s%d", i),
				})
			}
		}(p)
	}
	wg.Wait()

	// Interleaving across publishers is unconstrained, but each publisher's
	// own sequence must arrive in order.
	lastSeen := make(map[string]int)
	for i := 0; i < publishers*perPublisher; i++ {
		ev := receiveOne(t, sub).(domain.ApplicationStatusUpdated)
		var seq int
		_, err := fmt.Sscanf(ev.Status, "s%d", &seq)
		require.NoError(t, err)
		if last, ok := lastSeen[ev.Company]; ok {
			assert.Greater(t, seq, last, "publisher %s reordered", ev.Company)
		}
		lastSeen[ev.Company] = seq
	}
	assert.Zero(t, sub.Dropped())
}

func TestBus_SlowSubscriberLosesOldestOnly(t *testing.T) {
	bus := newTestBus(4)
	slow := bus.Subscribe()
	defer slow.Close()

	// Nobody drains the subscriber: publish well past its capacity. The
	// publisher must not block while doing so.
	const n = 10
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			bus.Publish(domain.ApplicationStatusUpdated{Company: "Acme", Status: fmt.Sprintf("s%d", i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	// The ring keeps the newest 4 events; the oldest 6 were evicted.
	assert.Equal(t, uint64(n-4), slow.Dropped())
	for i := n - 4; i < n; i++ {
		ev := receiveOne(t, slow).(domain.ApplicationStatusUpdated)
		assert.Equal(t, fmt.Sprintf("s%d", i), ev.Status)
	}
}

func TestBus_SubscribeCloseCycleDoesNotLeak(t *testing.T) {
	bus := newTestBus(8)

	for i := 0; i < 10000; i++ {
		sub := bus.Subscribe()
		bus.Publish(statusEvent("Applied"))
		sub.Close()
	}

	assert.Zero(t, bus.SubscriberCount())

	// A publish after all the churn must not panic or reach closed channels.
	bus.Publish(statusEvent("Applied"))
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := newTestBus(8)
	sub := bus.Subscribe()

	sub.Close()
	sub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel should be closed")
	assert.Zero(t, bus.SubscriberCount())
}

func TestBus_ShutdownClosesAllSubscriptions(t *testing.T) {
	bus := newTestBus(8)
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Shutdown()

	_, okA := <-a.Events()
	_, okB := <-b.Events()
	assert.False(t, okA)
	assert.False(t, okB)

	// Late subscribers get an already-closed handle.
	late := bus.Subscribe()
	_, ok := <-late.Events()
	assert.False(t, ok)

	// Publishing after shutdown is a silent no-op.
	bus.Publish(statusEvent("Applied"))
}

func TestBus_ConcurrentChurnWithPublishes(t *testing.T) {
	bus := newTestBus(16)
	stop := make(chan struct{})

	var publisher sync.WaitGroup
	publisher.Add(1)
	go func() {
		defer publisher.Done()
		for {
			select {
			case <-stop:
				return
			default:
				bus.Publish(statusEvent("Applied"))
			}
		}
	}()

	var churners sync.WaitGroup
	for w := 0; w < 8; w++ {
		churners.Add(1)
		go func() {
			defer churners.Done()
			for i := 0; i < 500; i++ {
				sub := bus.Subscribe()
				select {
				case <-sub.Events():
				case <-time.After(time.Millisecond):
				}
				sub.Close()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		churners.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("churn test deadlocked")
	}
	close(stop)
	publisher.Wait()
	assert.Zero(t, bus.SubscriberCount())
}

package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultQueueSize bounds each subscriber's delivery queue. A subscriber
// that falls this far behind is evicted rather than allowed to stall
// publishing.
const defaultQueueSize = 100

// Subscription is one observer's registration: an identity for removal and
// a receive channel the broadcaster closes on eviction.
type Subscription struct {
	ID string
	ch chan Event
}

// Events returns the subscriber's delivery channel. It is closed when the
// subscription is removed.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Broadcaster delivers every published event to every current subscriber.
// Publishing never blocks on a slow consumer.
type Broadcaster struct {
	mu        sync.Mutex
	subs      map[string]*Subscription
	queueSize int
	log       zerolog.Logger
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:      make(map[string]*Subscription),
		queueSize: defaultQueueSize,
		log:       log,
	}
}

// Subscribe registers a new observer. The first message delivered is a
// synthetic connected acknowledgment, never a domain event.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		ID: uuid.NewString(),
		ch: make(chan Event, b.queueSize),
	}
	b.mu.Lock()
	b.subs[sub.ID] = sub
	n := len(b.subs)
	sub.ch <- New(TypeConnected, ConnectedData{Message: "connected to podd event stream"})
	b.mu.Unlock()

	subscribersGauge.Set(float64(n))
	b.log.Info().Str("subscriber", sub.ID).Int("total", n).Msg("event subscriber connected")
	return sub
}

// Unsubscribe removes a subscription and closes its channel. It is
// idempotent; unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(sub.ch)
	}
	n := len(b.subs)
	b.mu.Unlock()
	if ok {
		subscribersGauge.Set(float64(n))
		b.log.Info().Str("subscriber", id).Int("total", n).Msg("event subscriber removed")
	}
}

// Publish delivers e to all current subscribers. A subscriber whose queue
// is full is evicted so it cannot delay the others.
func (b *Broadcaster) Publish(e Event) {
	var evicted []string
	b.mu.Lock()
	for id, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			evicted = append(evicted, id)
		}
	}
	for _, id := range evicted {
		sub := b.subs[id]
		delete(b.subs, id)
		close(sub.ch)
	}
	n := len(b.subs)
	b.mu.Unlock()

	publishedTotal.WithLabelValues(string(e.Type)).Inc()
	if len(evicted) > 0 {
		subscribersGauge.Set(float64(n))
		evictionsTotal.Add(float64(len(evicted)))
		for _, id := range evicted {
			b.log.Warn().Str("subscriber", id).Msg("subscriber queue full, evicting slow consumer")
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

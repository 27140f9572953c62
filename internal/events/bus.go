package events

import "sync"

// Envelope is what a Bus subscriber actually receives: the Event plus how
// many prior events were dropped for that subscriber before this one
// because its channel was full (spec §4.8's lossy-on-slow-consumer rule —
// a lagging Sandstorm session is told it lagged, not left silently behind).
type Envelope struct {
	Event  Event
	Lagged uint64
}

type subscriber struct {
	ch      chan Envelope
	dropped uint64
}

// Bus fans a stream of Events out to any number of subscribers, one
// channel per subscriber. A subscriber that can't keep up never blocks the
// publisher: Publish drops the event for that subscriber and accumulates a
// lag counter, delivered on the subscriber's next successful receive.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers a new subscriber with the given channel capacity and
// returns its id (for Unsubscribe) and receive-only channel.
func (b *Bus) Subscribe(capacity int) (id uint64, ch <-chan Envelope) {
	if capacity < 1 {
		capacity = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id = b.nextID
	sub := &subscriber{ch: make(chan Envelope, capacity)}
	b.subs[id] = sub
	return id, sub.ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once for the same id.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}

// Publish delivers ev to every current subscriber without blocking. A
// subscriber whose channel is full has the event dropped and its lag
// counter incremented; the counter is attached to the next Envelope that
// subscriber successfully receives, then reset to zero.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		env := Envelope{Event: ev, Lagged: sub.dropped}
		select {
		case sub.ch <- env:
			sub.dropped = 0
		default:
			sub.dropped++
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

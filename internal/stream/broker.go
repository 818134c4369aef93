package stream

import (
	"sync"

	"github.com/mangaswap/mangaswap-backend/internal/model"
)

const (
	EventMessage = "message"
	EventUnsend  = "unsend"
)

// Event is one chat update pushed to live subscribers. Message is set for
// EventMessage; MessageID for EventUnsend.
type Event struct {
	Type      string         `json:"type"`
	ChatID    uint64         `json:"chatId"`
	Message   *model.Message `json:"message,omitempty"`
	MessageID uint64         `json:"messageId,omitempty"`
}

type subscriber struct {
	ch chan Event
}

// Broker fans chat events out to per-channel subscribers. Delivery is
// best-effort: a subscriber that stops draining its buffer misses events
// rather than blocking senders.
type Broker struct {
	mu   sync.RWMutex
	subs map[uint64]map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]map[*subscriber]struct{})}
}

// Subscribe registers interest in a chat and returns the event channel and
// a cancel function. Every Subscribe must be paired with its cancel on the
// consumer's teardown path.
func (b *Broker) Subscribe(chatID uint64) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 64)}

	b.mu.Lock()
	if b.subs[chatID] == nil {
		b.subs[chatID] = make(map[*subscriber]struct{})
	}
	b.subs[chatID][sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[chatID], sub)
			if len(b.subs[chatID]) == 0 {
				delete(b.subs, chatID)
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev to every current subscriber of ev.ChatID.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[ev.ChatID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

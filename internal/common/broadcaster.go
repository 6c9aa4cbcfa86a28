package common

import "sync"

// Broadcaster fans messages out to subscribers. Slow subscribers miss
// messages instead of blocking publishers.
type Broadcaster struct {
	mu          sync.Mutex
	nextID      uint64
	subscribers map[uint64]chan []byte
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan []byte),
	}
}

// Subscribe registers a receiver with the given buffer size. The channel is
// closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe(buffer int) (uint64, <-chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	receiver := make(chan []byte, buffer)
	if b.closed {
		close(receiver)
		return 0, receiver
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = receiver

	return id, receiver
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if receiver, exists := b.subscribers[id]; exists {
		close(receiver)
		delete(b.subscribers, id)
	}
}

// Publish returns the number of subscribers that received the message.
func (b *Broadcaster) Publish(message []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, receiver := range b.subscribers {
		select {
		case receiver <- message:
			delivered++
		default:
		}
	}
	return delivered
}

func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, receiver := range b.subscribers {
		close(receiver)
		delete(b.subscribers, id)
	}
	b.closed = true
}

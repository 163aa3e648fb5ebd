package bus

import "sync"

// MemoryBus is an in-process HostBus used by every package test in this
// module that needs a bus without a real simulator or Wails runtime
// attached.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]func(payload []byte)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]func(payload []byte))}
}

func (b *MemoryBus) Subscribe(topic string, fn func(payload []byte)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], fn)
}

func (b *MemoryBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	handlers := append([]func([]byte){}, b.subs[topic]...)
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(payload)
	}
}

func (b *MemoryBus) UnsubscribeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]func(payload []byte))
}

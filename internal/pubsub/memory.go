package pubsub

import "sync"

const subscriberBuffer = 16

type memorySubscription struct {
	ch     chan []byte
	parent *memoryPubSub
	topic  string
}

func (s *memorySubscription) Channel() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.parent.unsubscribe(s.topic, s)
	return nil
}

// memoryPubSub is a real in-process fan-out bus: every subscriber on a
// topic gets its own buffered channel, and Publish delivers to all of them
// synchronously (a full channel drops the message for that subscriber
// rather than blocking the publisher).
type memoryPubSub struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

func newMemoryPubSub() *memoryPubSub {
	return &memoryPubSub{subs: map[string][]*memorySubscription{}}
}

func (p *memoryPubSub) Publish(topic string, message []byte) error {
	p.mu.Lock()
	subs := append([]*memorySubscription(nil), p.subs[topic]...)
	p.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- message:
		default:
		}
	}
	return nil
}

func (p *memoryPubSub) Subscribe(topic string) Subscription {
	sub := &memorySubscription{ch: make(chan []byte, subscriberBuffer), parent: p, topic: topic}
	p.mu.Lock()
	p.subs[topic] = append(p.subs[topic], sub)
	p.mu.Unlock()
	return sub
}

func (p *memoryPubSub) unsubscribe(topic string, target *memorySubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subs[topic]
	for i, s := range subs {
		if s == target {
			p.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			break
		}
	}
}

func (p *memoryPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, subs := range p.subs {
		for _, s := range subs {
			close(s.ch)
		}
	}
	p.subs = map[string][]*memorySubscription{}
	return nil
}

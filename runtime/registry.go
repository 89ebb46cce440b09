package runtime

import "sync"

type Set map[string]struct{}

// Registry routes values published on a topic to the sinks subscribed to it.
// Delivery keeps only the latest undelivered value per sink: subscribers
// re-read state when woken up, so intermediate values may be skipped.
type Registry[T any] struct {
	mu          sync.RWMutex
	sinks       map[string]chan T // map subscriber -> sink
	topicMember map[string]Set    // map topic to subscribers
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		sinks:       make(map[string]chan T),
		topicMember: make(map[string]Set),
	}
}

// Subscribe registers a subscriber's sink on a topic.
// The topic is created on the fly. Sinks must be buffered.
func (r *Registry[T]) Subscribe(subscriberID, topic string, sink chan T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[subscriberID] = sink

	if _, ok := r.topicMember[topic]; !ok {
		r.topicMember[topic] = make(Set)
	}
	r.topicMember[topic][subscriberID] = struct{}{}
}

// Unsubscribe removes a subscriber and drops the topic once empty.
func (r *Registry[T]) Unsubscribe(subscriberID, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, subscriberID)

	if members, ok := r.topicMember[topic]; ok {
		delete(members, subscriberID)
		if len(members) == 0 {
			delete(r.topicMember, topic)
		}
	}
}

// Publish never blocks. A sink that has not consumed its previous value gets it replaced.
func (r *Registry[T]) Publish(topic string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for subscriberID := range r.topicMember[topic] {
		if sink, ok := r.sinks[subscriberID]; ok {
			deliverLatest(sink, value)
		}
	}
}

func (r *Registry[T]) Subscribers(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topicMember[topic])
}

func deliverLatest[T any](sink chan T, value T) {
	select {
	case sink <- value:
		return
	default:
	}
	select {
	case <-sink:
	default:
	}
	select {
	case sink <- value:
	default:
	}
}

package events

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// subscription represents a single event subscription
type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// DefaultEventBus delivers events to handlers one at a time, in publish order,
// on a single dispatch goroutine.
type DefaultEventBus struct {
	mu        sync.RWMutex
	subs      map[EventType][]subscription
	wildcard  []subscription
	nextSubID SubscriptionID

	eventQueue chan Event
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *DefaultEventBus {
	bus := &DefaultEventBus{
		subs:       make(map[EventType][]subscription),
		eventQueue: make(chan Event, bufferSize),
		stopCh:     make(chan struct{}),
		nextSubID:  1,
	}

	bus.wg.Add(1)
	go bus.processEvents()

	return bus
}

// Subscribe registers a handler for a specific event type
func (eb *DefaultEventBus) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.nextSubID
	eb.nextSubID++
	eb.subs[eventType] = append(eb.subs[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler that receives every event
func (eb *DefaultEventBus) SubscribeAll(handler EventHandler) SubscriptionID {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.nextSubID
	eb.nextSubID++
	eb.wildcard = append(eb.wildcard, subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription by ID
func (eb *DefaultEventBus) Unsubscribe(id SubscriptionID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, sub := range eb.wildcard {
		if sub.id == id {
			eb.wildcard = append(eb.wildcard[:i:i], eb.wildcard[i+1:]...)
			return
		}
	}
	for eventType, subs := range eb.subs {
		for i, sub := range subs {
			if sub.id == id {
				eb.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues an event, blocking while the queue is full. Events published
// after Stop are dropped.
func (eb *DefaultEventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-eb.stopCh:
		fmt.Fprintf(os.Stderr, "[EventBus] dropped event (bus stopped): %v\n", event.Type)
		return
	default:
	}

	select {
	case eb.eventQueue <- event:
	case <-eb.stopCh:
		fmt.Fprintf(os.Stderr, "[EventBus] dropped event (bus stopped): %v\n", event.Type)
	}
}

// Stop stops the event bus after delivering everything already queued.
// It is safe to call more than once.
func (eb *DefaultEventBus) Stop() {
	eb.stopOnce.Do(func() { close(eb.stopCh) })
	eb.wg.Wait()
}

func (eb *DefaultEventBus) processEvents() {
	defer eb.wg.Done()

	for {
		select {
		case event := <-eb.eventQueue:
			eb.dispatch(event)

		case <-eb.stopCh:
			for {
				select {
				case event := <-eb.eventQueue:
					eb.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

// dispatch calls type subscribers first, then wildcard subscribers
func (eb *DefaultEventBus) dispatch(event Event) {
	eb.mu.RLock()
	handlers := make([]EventHandler, 0, len(eb.subs[event.Type])+len(eb.wildcard))
	for _, sub := range eb.subs[event.Type] {
		handlers = append(handlers, sub.handler)
	}
	for _, sub := range eb.wildcard {
		handlers = append(handlers, sub.handler)
	}
	eb.mu.RUnlock()

	for _, handler := range handlers {
		safeHandlerCall(handler, event)
	}
}

func safeHandlerCall(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[EventBus] handler panic for event %v: %v\n", event.Type, r)
		}
	}()

	handler(event)
}

// GetSubscriberCount returns the number of subscribers for an event type,
// including wildcard subscribers
func (eb *DefaultEventBus) GetSubscriberCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subs[eventType]) + len(eb.wildcard)
}

// GetQueueSize returns the current number of events in the queue
func (eb *DefaultEventBus) GetQueueSize() int {
	return len(eb.eventQueue)
}

package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Cycle events
	EventTypeCycleStarted   EventType = "cycle.started"
	EventTypeCycleCompleted EventType = "cycle.completed"

	// Account events
	EventTypeAccountStarted   EventType = "account.started"
	EventTypeAccountCompleted EventType = "account.completed"

	// Spinner events
	EventTypeSpinFinished     EventType = "spinner.spin_finished"
	EventTypeSpinnerRepaired  EventType = "spinner.repaired"
	EventTypeSpinnerUpgraded  EventType = "spinner.upgraded"
	EventTypeBoxOpened        EventType = "box.opened"
	EventTypeRequirementCheck EventType = "task.requirement_checked"
	EventTypeAdWatched        EventType = "task.ad_watched"

	// Error events
	EventTypeError EventType = "error"
)

// AllEventTypes lists every event type, in declaration order
var AllEventTypes = []EventType{
	EventTypeCycleStarted,
	EventTypeCycleCompleted,
	EventTypeAccountStarted,
	EventTypeAccountCompleted,
	EventTypeSpinFinished,
	EventTypeSpinnerRepaired,
	EventTypeSpinnerUpgraded,
	EventTypeBoxOpened,
	EventTypeRequirementCheck,
	EventTypeAdWatched,
	EventTypeError,
}

// Event represents a system event with metadata
type Event struct {
	Type      EventType              // Type of event
	Source    string                 // Component that emitted event (e.g., "coordinator", "bot")
	Timestamp time.Time              // When the event occurred
	Data      map[string]interface{} // Event-specific data
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// Publisher is the write side of the bus. Components that only emit events depend on this.
type Publisher interface {
	Publish(event Event)
}

// EventBus defines the interface for event pub/sub
type EventBus interface {
	Publisher

	// Subscribe registers a handler for a specific event type
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID

	// SubscribeAll registers a handler for every event type
	SubscribeAll(handler EventHandler) SubscriptionID

	// Unsubscribe removes a subscription by ID
	Unsubscribe(id SubscriptionID)

	// Stop stops the event bus and drains remaining events
	Stop()
}

// Discard is a Publisher that drops everything
type Discard struct{}

func (Discard) Publish(Event) {}

// NewCycleStartedEvent creates a cycle started event
func NewCycleStartedEvent(runID string, cycle, accounts int) Event {
	return Event{
		Type:      EventTypeCycleStarted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"run_id":   runID,
			"cycle":    cycle,
			"accounts": accounts,
		},
	}
}

// NewCycleCompletedEvent creates a cycle completed event
func NewCycleCompletedEvent(runID string, cycle int, elapsed time.Duration, next time.Time) Event {
	return Event{
		Type:      EventTypeCycleCompleted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"run_id":     runID,
			"cycle":      cycle,
			"elapsed":    elapsed.Round(time.Second).String(),
			"next_cycle": next.Format(time.RFC3339),
		},
	}
}

// NewAccountStartedEvent creates an account started event
func NewAccountStartedEvent(runID string, index int, name string) Event {
	return Event{
		Type:      EventTypeAccountStarted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"run_id":  runID,
			"account": index,
			"name":    name,
		},
	}
}

// NewAccountCompletedEvent creates an account completed event
func NewAccountCompletedEvent(runID string, index int, name string) Event {
	return Event{
		Type:      EventTypeAccountCompleted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"run_id":  runID,
			"account": index,
			"name":    name,
		},
	}
}

// NewSpinFinishedEvent is emitted once per spin loop run
func NewSpinFinishedEvent(account string, spinnerID int, outcome string, submitted, regenerations int) Event {
	return Event{
		Type:      EventTypeSpinFinished,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account":       account,
			"spinner_id":    spinnerID,
			"outcome":       outcome,
			"submitted_hp":  submitted,
			"regenerations": regenerations,
		},
	}
}

// NewSpinnerRepairedEvent creates a spinner repaired event
func NewSpinnerRepairedEvent(account string, spinnerID int) Event {
	return Event{
		Type:      EventTypeSpinnerRepaired,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account":    account,
			"spinner_id": spinnerID,
		},
	}
}

// NewSpinnerUpgradedEvent creates a spinner upgraded event
func NewSpinnerUpgradedEvent(account string, spinnerID, level int, price float64) Event {
	return Event{
		Type:      EventTypeSpinnerUpgraded,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account":    account,
			"spinner_id": spinnerID,
			"level":      level,
			"price":      price,
		},
	}
}

// NewBoxOpenedEvent creates a box opened event
func NewBoxOpenedEvent(account string, boxID int, reward string) Event {
	return Event{
		Type:      EventTypeBoxOpened,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account": account,
			"box_id":  boxID,
			"reward":  reward,
		},
	}
}

// NewRequirementCheckedEvent creates a requirement checked event
func NewRequirementCheckedEvent(account string, requirementID int, completed bool) Event {
	return Event{
		Type:      EventTypeRequirementCheck,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account":        account,
			"requirement_id": requirementID,
			"completed":      completed,
		},
	}
}

// NewAdWatchedEvent creates an ad watched event
func NewAdWatchedEvent(account string, requirementID int, reward float64) Event {
	return Event{
		Type:      EventTypeAdWatched,
		Source:    "bot",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"account":        account,
			"requirement_id": requirementID,
			"reward":         reward,
		},
	}
}

// NewErrorEvent creates an error event
func NewErrorEvent(source, component string, err error, metadata map[string]interface{}) Event {
	data := map[string]interface{}{
		"source":    source,
		"component": component,
		"error":     err.Error(),
	}

	// Merge metadata
	for k, v := range metadata {
		data[k] = v
	}

	return Event{
		Type:      EventTypeError,
		Source:    source,
		Timestamp: time.Now(),
		Data:      data,
	}
}

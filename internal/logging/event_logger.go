package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jordanella.com/spinner-go/internal/events"
)

// EventLogger subscribes to the event bus and appends every event to a log file
type EventLogger struct {
	logger         *Logger
	eventBus       events.EventBus
	subscriptionID events.SubscriptionID
	logFile        *os.File
}

// NewEventLogger creates logDir if needed and opens events_<timestamp>.log inside it
func NewEventLogger(eventBus events.EventBus, logDir string) (*EventLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("events_%s.log", timestamp))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := NewLogger("events").SetOutput(logFile).SetMinLevel(LogLevelDebug)

	el := &EventLogger{
		logger:   logger,
		eventBus: eventBus,
		logFile:  logFile,
	}
	el.subscriptionID = eventBus.SubscribeAll(el.handleEvent)

	return el, nil
}

// Path returns the log file path
func (el *EventLogger) Path() string {
	return el.logFile.Name()
}

func (el *EventLogger) handleEvent(event events.Event) {
	context := map[string]interface{}{
		"source": event.Source,
	}
	for k, v := range event.Data {
		context[k] = v
	}

	if event.Type == events.EventTypeError {
		el.logger.WarnWithContext(string(event.Type), context)
		return
	}
	el.logger.InfoWithContext(string(event.Type), context)
}

// Close unsubscribes and closes the log file. Stop the bus first so queued events are flushed.
func (el *EventLogger) Close() error {
	el.eventBus.Unsubscribe(el.subscriptionID)
	if el.logFile != nil {
		return el.logFile.Close()
	}
	return nil
}

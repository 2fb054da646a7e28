package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event flowing through the engine.
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// GetEventID returns the event ID.
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type.
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp.
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// ===============================
// EVENT BUS
// ===============================

// EventBus delivers domain events to registered handlers. Delivery is
// at-least-once; handlers must be idempotent.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event) error
	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Stats() *EventBusStats
}

// EventHandler handles one event.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

// Handle implements EventHandler.
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f.Func(ctx, event)
}

// GetHandlerID implements EventHandler.
func (f EventHandlerFunc) GetHandlerID() string { return f.ID }

// EventBusStats represents event bus counters.
type EventBusStats struct {
	EventsPublished int64 `json:"events_published"`
	EventsProcessed int64 `json:"events_processed"`
	EventsFailed    int64 `json:"events_failed"`
	HandlersCount   int   `json:"handlers_count"`
	QueueDepth      int   `json:"queue_depth"`
}

// EventBusConfig holds configuration for the in-memory bus.
type EventBusConfig struct {
	BufferSize  int `json:"buffer_size"`
	WorkerCount int `json:"worker_count"`
}

// DefaultEventBusConfig returns default configuration.
func DefaultEventBusConfig() *EventBusConfig {
	return &EventBusConfig{
		BufferSize:  1000,
		WorkerCount: 5,
	}
}

// inMemoryEventBus implements EventBus over channels with a worker pool.
type inMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	eventQueue  chan eventMessage
	logger      *zap.Logger
	stats       EventBusStats
	statsMu     sync.Mutex
	workerCount int
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

type eventMessage struct {
	event     Event
	timestamp time.Time
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(cfg *EventBusConfig, logger *zap.Logger) EventBus {
	if cfg == nil {
		cfg = DefaultEventBusConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &inMemoryEventBus{
		handlers:    make(map[string][]EventHandler),
		eventQueue:  make(chan eventMessage, cfg.BufferSize),
		logger:      logger,
		workerCount: cfg.WorkerCount,
	}
}

// Publish delivers an event to all handlers synchronously.
func (b *inMemoryEventBus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	b.logger.Debug("Publishing event",
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
	)

	if err := b.processEvent(ctx, event); err != nil {
		b.statsMu.Lock()
		b.stats.EventsFailed++
		b.statsMu.Unlock()
		return err
	}

	b.statsMu.Lock()
	b.stats.EventsPublished++
	b.statsMu.Unlock()
	return nil
}

// PublishAsync queues an event for background delivery.
func (b *inMemoryEventBus) PublishAsync(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	select {
	case b.eventQueue <- eventMessage{event: event, timestamp: time.Now()}:
		b.statsMu.Lock()
		b.stats.EventsPublished++
		b.statsMu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("event queue is full")
	}
}

// Subscribe registers a handler for one event type.
func (b *inMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	b.logger.Info("Handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler_id", handler.GetHandlerID()),
	)
	return nil
}

// Unsubscribe removes a handler for one event type.
func (b *inMemoryEventBus) Unsubscribe(eventType string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.GetHandlerID() == handler.GetHandlerID() {
			b.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not found")
}

// Start launches the background workers for async delivery.
func (b *inMemoryEventBus) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.logger.Info("Starting event bus", zap.Int("worker_count", b.workerCount))
	for i := 0; i < b.workerCount; i++ {
		b.wg.Add(1)
		go b.worker(workerCtx, i)
	}
	return nil
}

// Stop drains the workers.
func (b *inMemoryEventBus) Stop(ctx context.Context) error {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current counters.
func (b *inMemoryEventBus) Stats() *EventBusStats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()

	b.mu.RLock()
	handlers := 0
	for _, hs := range b.handlers {
		handlers += len(hs)
	}
	b.mu.RUnlock()

	stats := b.stats
	stats.HandlersCount = handlers
	stats.QueueDepth = len(b.eventQueue)
	return &stats
}

func (b *inMemoryEventBus) worker(ctx context.Context, id int) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.eventQueue:
			if err := b.processEvent(ctx, msg.event); err != nil {
				b.statsMu.Lock()
				b.stats.EventsFailed++
				b.statsMu.Unlock()
			} else {
				b.statsMu.Lock()
				b.stats.EventsProcessed++
				b.statsMu.Unlock()
			}
		}
	}
}

func (b *inMemoryEventBus) processEvent(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.handlers[event.GetEventType()]...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_id", event.GetEventID()),
				zap.String("event_type", event.GetEventType()),
				zap.String("handler_id", handler.GetHandlerID()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"merithub/internal/events"
	"merithub/internal/middleware"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
	streamBufferSize = 64
)

// streamedEventTypes are the bus events forwarded to stream clients.
var streamedEventTypes = []string{
	events.TypeBadgeGranted,
	events.TypeAwardComputed,
	events.TypeCertificateIssued,
}

// StreamController pushes achievement events to websocket clients as
// they happen. Each connection gets its own bus subscription; a slow
// client drops events rather than stalling the bus workers.
type StreamController struct {
	bus      events.EventBus
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewStreamController creates a new stream controller
func NewStreamController(bus events.EventBus, logger *zap.Logger) *StreamController {
	return &StreamController{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream handles GET /api/v1/achievements/stream
func (c *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", "achievement_stream"),
	)

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	handlerID := c.handlerID()
	feed := make(chan events.Event, streamBufferSize)
	handler := events.EventHandlerFunc{
		ID: handlerID,
		Func: func(ctx context.Context, event events.Event) error {
			select {
			case feed <- event:
			default:
				// Client is behind; the feed is best effort.
			}
			return nil
		},
	}

	for _, eventType := range streamedEventTypes {
		if err := c.bus.Subscribe(eventType, handler); err != nil {
			logger.Error("Failed to subscribe stream handler", zap.Error(err))
			return
		}
	}
	defer func() {
		for _, eventType := range streamedEventTypes {
			if err := c.bus.Unsubscribe(eventType, handler); err != nil {
				logger.Warn("Failed to unsubscribe stream handler", zap.Error(err))
			}
		}
	}()

	logger.Info("Stream client connected", zap.String("handler_id", handlerID))

	// Read pump: the client sends nothing meaningful, but reads surface
	// close frames and connection loss.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Info("Stream client disconnected", zap.String("handler_id", handlerID))
			return
		case event := <-feed:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("Stream write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *StreamController) handlerID() string {
	if id, err := uuid.NewV4(); err == nil {
		return "stream-" + id.String()
	}
	return fmt.Sprintf("stream-%d", time.Now().UnixNano())
}

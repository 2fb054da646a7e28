package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the current health of the database.
type HealthStatus struct {
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	ResponseTime    time.Duration `json:"response_time"`
	ConnectionCount int           `json:"connection_count"`
	Errors          []string      `json:"errors,omitempty"`
}

// HealthChecker pings the database periodically and serves the latest
// status to the health endpoints.
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu     sync.RWMutex
	status *HealthStatus

	checkInterval time.Duration
	stopCh        chan struct{}
	stopped       chan struct{}
}

// NewHealthChecker starts a background checker.
func NewHealthChecker(manager *Manager, interval time.Duration, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		manager:       manager,
		logger:        logger,
		checkInterval: interval,
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go hc.run()
	return hc
}

func (hc *HealthChecker) run() {
	defer close(hc.stopped)

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-hc.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			status := hc.Check(ctx)
			cancel()

			if status.Status != StatusHealthy {
				hc.logger.Warn("Database health degraded",
					zap.String("status", status.Status),
					zap.Strings("errors", status.Errors),
				)
			}
		}
	}
}

// Check pings the database and refreshes the cached status.
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	if err := hc.manager.DB().PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
	}

	status.ResponseTime = time.Since(start)
	status.ConnectionCount = hc.manager.Stats().OpenConnections

	if status.Status == StatusHealthy && status.ResponseTime > 500*time.Millisecond {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "slow ping response")
	}

	hc.mu.Lock()
	hc.status = status
	hc.mu.Unlock()

	return status
}

// Last returns the most recent status without performing a new check.
func (hc *HealthChecker) Last() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

// Stop terminates the background checker.
func (hc *HealthChecker) Stop() {
	select {
	case <-hc.stopCh:
	default:
		close(hc.stopCh)
	}
	<-hc.stopped
}

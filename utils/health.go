package utils

import (
	"context"
	"sync"
	"time"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor keeps the latest health snapshot of the registered checks.
type HealthMonitor struct {
	checks  map[string]HealthCheck
	current HealthStatus
	mu      sync.RWMutex
}

func NewHealthMonitor(checks map[string]HealthCheck) *HealthMonitor {
	return &HealthMonitor{checks: checks}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check runs every check once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Services: make(map[string]bool, len(m.checks)), CheckedAt: time.Now()}
	for name, check := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := check(checkCtx) == nil
		cancel()
		status.Services[name] = ok
		status.Healthy = status.Healthy && ok
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context, every time.Duration) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

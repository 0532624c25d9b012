package monitoring

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

type CheckFunc func(ctx context.Context) error

// Health tracks the last known state of each monitored dependency.
// Dependencies start out healthy.
type Health struct {
	mu     sync.RWMutex
	checks map[string]*atomic.Bool
}

func NewHealth() *Health {
	return &Health{checks: make(map[string]*atomic.Bool)}
}

func (h *Health) register(name string) *atomic.Bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	healthy := &atomic.Bool{}
	healthy.Store(true)
	h.checks[name] = healthy
	return healthy
}

// Unhealthy returns the names of failing dependencies in sorted order.
func (h *Health) Unhealthy() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var names []string
	for name, healthy := range h.checks {
		if !healthy.Load() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Monitor runs check every interval until ctx is done.
func (h *Health) Monitor(ctx context.Context, name string, interval time.Duration, check CheckFunc) {
	healthy := h.register(name)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.runCheck(ctx, name, healthy, interval, check)
		}
	}
}

func (h *Health) runCheck(ctx context.Context, name string, healthy *atomic.Bool, timeout time.Duration, check CheckFunc) {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := check(checkCtx)
	wasHealthy := healthy.Swap(err == nil)

	switch {
	case err != nil && wasHealthy:
		slog.Warn("[HealthCheck] Dependency is unhealthy",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
	case err == nil && !wasHealthy:
		slog.Info("[HealthCheck] Dependency recovered",
			slog.String("dependency", name))
	}
}

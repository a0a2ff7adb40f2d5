package connectivity

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

// Bus topics published on connectivity transitions and consumed as
// hints from other components.
const (
	TopicOnline  = "connectivity.online"
	TopicOffline = "connectivity.offline"

	// Hints are advisory. An online hint is re-validated with an
	// active probe before the monitor flips; a link-layer "online"
	// signal alone is not trusted. An offline hint is trusted.
	TopicHintOnline  = "connectivity.hint.online"
	TopicHintOffline = "connectivity.hint.offline"
)

// Monitor answers "is the backend actually reachable", not "does the
// OS report a link". It combines bus hints with a fixed-interval
// active probe.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	bus      evbus.Bus

	online   atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
}

func NewMonitor(probeURL string, interval time.Duration, bus evbus.Bus) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		bus:      bus,
		stop:     make(chan struct{}),
	}
}

// Online reports the last known connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// CheckActive issues a lightweight HEAD probe. Any completed round
// trip counts as online regardless of status code; only a transport
// failure counts as offline. It never returns an error.
func (m *Monitor) CheckActive(ctx context.Context) bool {
	// Cache-busting query so intermediaries cannot answer for the
	// backend.
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodHead,
		m.probeURL+"?cb="+uuid.NewString(),
		nil,
	)
	if err != nil {
		logger.Error("connection probe request failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := m.client.Do(req)
	if err != nil {
		logger.Warn("connection check failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Start wires the hint subscriptions, performs the initial probe and
// launches the polling safety net.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.bus.Subscribe(TopicHintOnline, m.onOnlineHint); err != nil {
		return err
	}
	if err := m.bus.Subscribe(TopicHintOffline, m.onOfflineHint); err != nil {
		return err
	}

	m.setOnline(m.CheckActive(ctx))

	go m.pollLoop(ctx)
	return nil
}

// Stop halts polling and detaches from the bus.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		_ = m.bus.Unsubscribe(TopicHintOnline, m.onOnlineHint)
		_ = m.bus.Unsubscribe(TopicHintOffline, m.onOfflineHint)
	})
}

func (m *Monitor) onOnlineHint() {
	if m.online.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Double-check with an active probe that the connection is
	// really back before declaring online.
	if m.CheckActive(ctx) {
		m.setOnline(true)
	}
}

func (m *Monitor) onOfflineHint() {
	m.setOnline(false)
}

func (m *Monitor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.setOnline(m.CheckActive(ctx))
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) setOnline(v bool) {
	if m.online.Swap(v) == v {
		return
	}
	// The bus holds its lock while delivering to synchronous
	// subscribers, and setOnline runs inside hint deliveries, so the
	// transition broadcast must leave on its own goroutine.
	if v {
		logger.Info("connectivity restored", nil)
		go m.bus.Publish(TopicOnline)
		return
	}
	logger.Warn("connectivity lost", nil)
	go m.bus.Publish(TopicOffline)
}

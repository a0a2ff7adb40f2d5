package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

func TestCheckActiveAnyResponseCountsAsOnline(t *testing.T) {
	// Even a server error proves the backend is reachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMonitor(srv.URL+"/favicon.ico", time.Minute, evbus.New())
	if !m.CheckActive(context.Background()) {
		t.Fatal("completed round trip should count as online")
	}
}

func TestCheckActiveTransportFailureIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	m := NewMonitor(srv.URL+"/favicon.ico", time.Minute, evbus.New())
	if m.CheckActive(context.Background()) {
		t.Fatal("refused connection should count as offline")
	}
}

func TestCheckActiveSendsCacheBustingProbe(t *testing.T) {
	var method, cacheControl, query atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		method.Store(r.Method)
		cacheControl.Store(r.Header.Get("Cache-Control"))
		query.Store(r.URL.Query().Get("cb"))
	}))
	defer srv.Close()

	m := NewMonitor(srv.URL+"/favicon.ico", time.Minute, evbus.New())
	if !m.CheckActive(context.Background()) {
		t.Fatal("probe should succeed")
	}
	if method.Load() != http.MethodHead {
		t.Fatalf("probe method = %v, want HEAD", method.Load())
	}
	if cacheControl.Load() != "no-cache" {
		t.Fatalf("Cache-Control = %v, want no-cache", cacheControl.Load())
	}
	if q, _ := query.Load().(string); q == "" {
		t.Fatal("probe should carry a cache-busting query parameter")
	}
}

// waitForCount polls an event counter; transition broadcasts leave
// the monitor on their own goroutine.
func waitForCount(t *testing.T, c *atomic.Int32, want int32, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s: got %d events, want %d", msg, c.Load(), want)
}

func TestMonitorPublishesTransitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	bus := evbus.New()
	var onlines, offlines atomic.Int32
	if err := bus.Subscribe(TopicOnline, func() { onlines.Add(1) }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.Subscribe(TopicOffline, func() { offlines.Add(1) }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m := NewMonitor(srv.URL+"/favicon.ico", time.Minute, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	// Initial probe succeeds: offline -> online transition.
	if !m.Online() {
		t.Fatal("expected online after initial probe")
	}
	waitForCount(t, &onlines, 1, "after initial probe")

	// An offline hint is trusted without a probe.
	bus.Publish(TopicHintOffline)
	if m.Online() {
		t.Fatal("expected offline after hint")
	}
	waitForCount(t, &offlines, 1, "after offline hint")

	// An online hint is re-validated by a probe before flipping.
	bus.Publish(TopicHintOnline)
	if !m.Online() {
		t.Fatal("expected online after validated hint")
	}
	waitForCount(t, &onlines, 2, "after online hint")

	// Repeating the same state publishes nothing.
	bus.Publish(TopicHintOnline)
	time.Sleep(20 * time.Millisecond)
	if onlines.Load() != 2 {
		t.Fatalf("duplicate state should not re-publish, got %d events", onlines.Load())
	}
}

func TestMonitorOnlineHintIgnoredWhenProbeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	bus := evbus.New()
	m := NewMonitor(srv.URL+"/favicon.ico", time.Minute, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	if m.Online() {
		t.Fatal("expected offline against a dead backend")
	}

	// The hint says online but the probe still fails; stay offline.
	bus.Publish(TopicHintOnline)
	if m.Online() {
		t.Fatal("unvalidated online hint must not flip the state")
	}
}

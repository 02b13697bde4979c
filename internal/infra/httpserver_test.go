package infra

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServerAppliesConfigTimeouts(t *testing.T) {
	cfg := &Config{
		Port:             "8080",
		HTTPReadTimeout:  3 * time.Second,
		HTTPWriteTimeout: 4 * time.Second,
		HTTPIdleTimeout:  5 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NewServeMux())

	if srv.Addr() != ":8080" {
		t.Fatalf("addr = %q, want :8080", srv.Addr())
	}
	if srv.server.ReadTimeout != 3*time.Second ||
		srv.server.WriteTimeout != 4*time.Second ||
		srv.server.IdleTimeout != 5*time.Second {
		t.Fatalf("timeouts not applied: read=%v write=%v idle=%v",
			srv.server.ReadTimeout, srv.server.WriteTimeout, srv.server.IdleTimeout)
	}
	if srv.shutdownTimeout != 5*time.Second {
		t.Fatalf("shutdown grace = %v, want 5s", srv.shutdownTimeout)
	}
}

func TestHTTPServerRunStopsOnContextCancel(t *testing.T) {
	srv := NewHTTPServer(&Config{Port: "0", HTTPIdleTimeout: time.Second}, http.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never stopped")
	}
}

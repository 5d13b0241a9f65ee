package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"strafenkasse-service/internal/config"
	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/poller"
	"strafenkasse-service/internal/teststubs"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:           "0",
		DBPath:         "", // memory store
		Provider:       "fixture",
		SyncWindowDays: 14,
		Spond:          config.SpondConfig{NoReplyPenalty: 500},
		Metrics:        config.MetricsConfig{Enabled: false},
	}
}

func TestNewBuildsWorkingHandler(t *testing.T) {
	srv, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.gracefulShutdown()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}

	// Catalog was seeded at startup.
	resp, err = http.Get(ts.URL + "/catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	defer resp.Body.Close()
	var listing map[string][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing["types"]) == 0 {
		t.Fatal("expected seeded catalog entries")
	}
}

func TestNewWithSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "kasse.db")

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.gracefulShutdown()
}

func TestSyncLoopOnlyWithInterval(t *testing.T) {
	cfg := testConfig(t)
	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if srv.sync != nil {
		t.Fatal("expected no sync loop without interval")
	}
	srv.gracefulShutdown()

	cfg.SyncInterval = time.Hour
	srv, err = New(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if srv.sync == nil {
		t.Fatal("expected sync loop with interval")
	}
	srv.gracefulShutdown()
}

type recordingServer struct {
	started  chan struct{}
	shutdown bool
}

func (r *recordingServer) ListenAndServe() error {
	close(r.started)
	return http.ErrServerClosed
}
func (r *recordingServer) Shutdown(ctx context.Context) error { r.shutdown = true; return nil }
func (r *recordingServer) Addr() string                       { return ":0" }
func (r *recordingServer) Handler() http.Handler              { return nil }

type recordingLoop struct {
	started bool
	stopped bool
}

func (r *recordingLoop) Start(ctx context.Context)      { r.started = true }
func (r *recordingLoop) Stop(ctx context.Context) error { r.stopped = true; return nil }
func (r *recordingLoop) Status() poller.Status          { return poller.Status{} }

func TestRunStartsAndStopsEverything(t *testing.T) {
	httpSrv := &recordingServer{started: make(chan struct{})}
	loop := &recordingLoop{}
	srv := newServerWithDeps(testConfig(t), nil, nil, httpSrv, loop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	select {
	case <-httpSrv.started:
	case <-time.After(time.Second):
		t.Fatal("http server never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	if !loop.started || !loop.stopped {
		t.Fatalf("sync loop lifecycle incomplete: %+v", loop)
	}
	if !httpSrv.shutdown {
		t.Fatal("http server was not shut down")
	}
}

func TestSyncWithInjectedProvider(t *testing.T) {
	provider := &teststubs.StubProvider{
		Events: []domain.Event{
			teststubs.PastEvent("E1", "Training Dienstag", 2,
				teststubs.Unanswered("m1", "Max Müller"),
				teststubs.Unanswered("m2", "Jonas Weber"),
			),
		},
	}

	srv, err := newServerWithProvider(testConfig(t), nil, provider)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.gracefulShutdown()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync status %d", resp.StatusCode)
	}

	var summary struct {
		NewPenalties int `json:"newPenalties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.NewPenalties != 2 {
		t.Fatalf("new penalties = %d, want 2", summary.NewPenalties)
	}
	if provider.Calls.Load() == 0 {
		t.Fatal("provider was never called")
	}
}

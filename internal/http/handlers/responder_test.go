package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestWriteErrorIncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	logger, _ := bufferLogger()

	rr := httptest.NewRecorder()
	writeError(rr, req, http.StatusTeapot, "boom", logger)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content type json, got %s", got)
	}
	if body := rr.Body.String(); !strings.Contains(body, "abc123") {
		t.Fatalf("expected requestId in body, got %s", body)
	}
}

func TestWriteJSONLogsEncodeError(t *testing.T) {
	logger, buf := bufferLogger()
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, make(chan int), logger)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(buf.String(), "failed to encode response") {
		t.Fatalf("expected encode error logged, got %s", buf.String())
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	logger, _ := bufferLogger()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := loggerFromContext(req, logger); got != logger {
		t.Fatal("expected fallback logger")
	}
	if got := loggerFromContext(nil, logger); got != logger {
		t.Fatal("expected fallback for nil request")
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCommand(t *testing.T, srvURL string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--addr", srvURL}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("command %v: %v", args, err)
	}
	return out.String()
}

func TestBalancesCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/penalties/balances" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"balances":  []map[string]any{{"player": "Max Müller", "count": 2, "total": 450}},
			"totalOpen": 450,
		})
	}))
	defer srv.Close()

	out := runCommand(t, srv.URL, "balances")
	if !strings.Contains(out, "Max Müller") || !strings.Contains(out, "4.50 €") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPaidCommandSendsToken(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Admin-Token")
		_ = json.NewEncoder(w).Encode(map[string]any{"player": "Max Müller", "marked": 2})
	}))
	defer srv.Close()

	out := runCommand(t, srv.URL, "--token", "secret", "paid", "Max Müller")
	if gotToken != "secret" {
		t.Fatalf("token header = %q, want secret", gotToken)
	}
	if !strings.Contains(out, "settled 2 penalties") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSyncCommandPrintsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sync" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"eventsChecked": 3, "newPenalties": 1, "alreadyAssessed": 2, "skippedUpcoming": 1,
		})
	}))
	defer srv.Close()

	out := runCommand(t, srv.URL, "sync")
	if !strings.Contains(out, "events checked: 3") || !strings.Contains(out, "new: 1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCommandSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer srv.Close()

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"--addr", srv.URL, "paid", "Max"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

package httpadapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddlewareHonorsCallerID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "conv-7f3a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "conv-7f3a" {
		t.Fatalf("expected caller request id to propagate, got %q", seen)
	}
	if got := rec.Header().Get(requestIDHeader); got != "conv-7f3a" {
		t.Fatalf("expected request id echoed in response header, got %q", got)
	}
}

func TestRequestIDMiddlewareGeneratesIDWhenAbsent(t *testing.T) {
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id in the response header")
	}
}

func TestAccessLogMiddlewareRecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := accessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"version mismatch"}`))
	}), logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/profiles/citizen-1", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Fatalf("expected 4xx logged at warn, got %v", entry["level"])
	}
	if entry["status"] != float64(http.StatusConflict) {
		t.Fatalf("expected status 409 in log entry, got %v", entry["status"])
	}
	if entry["bytes"] == float64(0) {
		t.Fatalf("expected non-zero response bytes in log entry, got %v", entry["bytes"])
	}
	if entry["path"] != "/v1/profiles/citizen-1" {
		t.Fatalf("unexpected path in log entry: %v", entry["path"])
	}
}

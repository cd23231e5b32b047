package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestLoggerWithRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	h := LoggerWith(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected generated X-Request-ID header")
	}
	out := buf.String()
	for _, want := range []string{"status=418", "path=/v1/conversations", "bytes=15"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}

func TestLoggerWithKeepsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := LoggerWith(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("Expected request ID abc-123, got %q", got)
	}
	if !strings.Contains(buf.String(), "request_id=abc-123") {
		t.Errorf("Expected request ID in log, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("Expected implicit 200 in log, got %s", buf.String())
	}
}

func TestLoggerWithRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	h := LoggerWith(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("pile: handle 3 appears twice")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/x/speak", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), "Panic while serving request") {
		t.Errorf("Expected panic to be logged, got %s", buf.String())
	}
}

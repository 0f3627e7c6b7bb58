package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/360nurse/api/internal/platform/auth"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// capturedLogger returns a logger writing JSON lines into buf so tests can
// assert on the emitted fields.
func capturedLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf)
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	return entry
}

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := RequestID()(func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return okHandler(c)
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == "" {
		t.Error("expected a generated request_id on the context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context id %q", rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequestID()(func(c echo.Context) error {
		if rid, _ := c.Get("request_id").(string); rid != "my-custom-id" {
			t.Errorf("request_id = %q, want my-custom-id", rid)
		}
		return okHandler(c)
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "my-custom-id" {
		t.Errorf("response header = %q, want my-custom-id", got)
	}
}

func TestLogger_EmitsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vitals", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-42")

	if err := Logger(capturedLogger(&buf))(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := lastLogLine(t, &buf)
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/vitals" {
		t.Errorf("path = %v, want /api/vitals", entry["path"])
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestLogger_ErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vitals", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wantErr := echo.NewHTTPError(http.StatusBadRequest, "bad")
	err := Logger(capturedLogger(&buf))(func(c echo.Context) error {
		return wantErr
	})(c)

	if err != wantErr {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
	if entry := lastLogLine(t, &buf); entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Recovery(capturedLogger(&buf))(func(c echo.Context) error {
		panic("boom")
	})(c)

	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", httpErr.Code)
	}
	if entry := lastLogLine(t, &buf); entry["panic"] != "boom" {
		t.Errorf("panic field = %v, want boom", entry["panic"])
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Recovery(capturedLogger(&buf))(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output on the happy path, got %q", buf.String())
	}
}

func TestAudit_RecordsPatientAccess(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/alerts?patientId=p-1", nil)
	req.Header.Set("User-Agent", "nurse-app/1.0")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), "u-1", "NURSE")))
	c.Set("request_id", "req-123")

	var recorded []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	if err := Audit(capturedLogger(&buf), recorder)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(recorded))
	}
	entry := recorded[0]
	if entry.UserID != "u-1" || entry.UserRole != "NURSE" {
		t.Errorf("identity = %s/%s, want u-1/NURSE", entry.UserID, entry.UserRole)
	}
	if entry.ResourceType != "alerts" {
		t.Errorf("resource type = %q, want alerts", entry.ResourceType)
	}
	if entry.PatientID != "p-1" {
		t.Errorf("patient id = %q, want p-1", entry.PatientID)
	}
	if entry.Action != "read" {
		t.Errorf("action = %q, want read", entry.Action)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", entry.StatusCode)
	}

	if logged := lastLogLine(t, &buf); logged["type"] != "phi_audit" {
		t.Errorf("log type = %v, want phi_audit", logged["type"])
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var recorded int
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded++
		return nil
	})

	if err := Audit(capturedLogger(&buf), recorder)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded != 0 {
		t.Errorf("recorded %d entries for a non-API path, want 0", recorded)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no audit log for non-API path, got %q", buf.String())
	}
}

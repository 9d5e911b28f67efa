package http

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONResponseBuilder_Body(t *testing.T) {
	w := httptest.NewRecorder()

	err := NewJSONResponse().
		Status(http.StatusOK).
		Header("X-Test", "1").
		JSON(map[string]int{"amount": 0}).
		Write(w)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	if w.Body.String() != `{"amount":0}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_EmptyWithCookie(t *testing.T) {
	w := httptest.NewRecorder()

	err := NewJSONResponse().
		Status(http.StatusCreated).
		Cookie(&http.Cookie{Name: "sessionId", Value: "abc", Path: "/"}).
		Write(w)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Errorf("Content-Type set on empty body: %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "sessionId=abc") {
		t.Errorf("Set-Cookie = %q", w.Header().Get("Set-Cookie"))
	}
}

func TestJSONResponseBuilder_EncodeError(t *testing.T) {
	w := httptest.NewRecorder()
	if err := NewJSONResponse().JSON(math.Inf(1)).Write(w); err == nil {
		t.Error("expected error for unencodable body")
	}
}

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompanyLookupRequiresSlug(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewCompanyHandler(nil, logger)

	rr := httptest.NewRecorder()
	h.Lookup(rr, httptest.NewRequest(http.MethodGet, "/api/v1/company/lookup", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400 without slug, got %d", rr.Code)
	}
}

func TestCompanyLookupGetOnly(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewCompanyHandler(nil, logger)

	rr := httptest.NewRecorder()
	h.Lookup(rr, httptest.NewRequest(http.MethodPost, "/api/v1/company/lookup?slug=glow-salon", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rr.Code)
	}
}

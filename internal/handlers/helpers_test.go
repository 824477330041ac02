package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unifyhq/unify/internal/scheduling"
	"github.com/unifyhq/unify/internal/storage"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrPermissionDenied, http.StatusForbidden},
		{storage.Conflict("name", "taken"), http.StatusConflict},
		{fmt.Errorf("%w: bad status", scheduling.ErrMalformed), http.StatusBadRequest},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		respondError(rr, logger, httptest.NewRequest(http.MethodGet, "/", nil), c.err)
		if rr.Code != c.want {
			t.Errorf("respondError(%v) = %d, want %d", c.err, rr.Code, c.want)
		}
	}
}

func TestRespondErrorConflictNamesField(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rr := httptest.NewRecorder()
	respondError(rr, logger, httptest.NewRequest(http.MethodPost, "/", nil),
		storage.Conflict("start_time", "employee is already booked from 2026-01-05 09:00:00 to 2026-01-05 09:30:00"))

	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Field != "start_time" {
		t.Errorf("want field start_time, got %q", body.Field)
	}
	if body.Error == "" {
		t.Error("conflict body should carry the conflicting window")
	}
}

func TestRequireIDMissing(t *testing.T) {
	rr := httptest.NewRecorder()
	if _, ok := requireID(rr, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)); ok {
		t.Fatal("missing id should fail")
	}
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}
}

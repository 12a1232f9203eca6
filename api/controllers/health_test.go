package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Wanderlust-Env") != "dev" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	tests := []struct {
		name   string
		db     stubPinger
		redis  stubPinger
		status int
	}{
		{name: "all up", status: http.StatusOK},
		{name: "db down", db: stubPinger{err: errors.New("dial tcp")}, status: http.StatusServiceUnavailable},
		{name: "redis down", redis: stubPinger{err: errors.New("i/o timeout")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady(cfg, logger.Nop(), tc.db, tc.redis).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

type stubGeocoder struct {
	result *maps.GeocodeResult
	err    error
	query  string
}

func (s *stubGeocoder) Lookup(ctx context.Context, query string) (*maps.GeocodeResult, error) {
	s.query = query
	return s.result, s.err
}

func TestGeocode(t *testing.T) {
	svc := &stubGeocoder{result: &maps.GeocodeResult{PlaceID: "p1", FormattedAddress: "Santorini, Greece", Location: maps.LatLng{Latitude: 36.39, Longitude: 25.46}}}
	rec := httptest.NewRecorder()
	Geocode(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Santorini", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got maps.GeocodeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PlaceID != "p1" || svc.query != "Santorini" {
		t.Fatalf("unexpected result %+v query %q", got, svc.query)
	}
}

func TestGeocodeErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Geocode(&stubGeocoder{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Geocode(&stubGeocoder{err: pkgerrors.New(pkgerrors.CodeNotFound, "no match")}, logger.Nop()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Atlantis", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Geocode(nil, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Atlantis", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a geocoder, got %d", rec.Code)
	}
}

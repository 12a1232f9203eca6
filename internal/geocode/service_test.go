package geocode

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
)

type countingGeocoder struct {
	calls atomic.Int32
	err   error
}

func (c *countingGeocoder) Geocode(ctx context.Context, query string) (*maps.GeocodeResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &maps.GeocodeResult{
		PlaceID:          "place-santorini",
		FormattedAddress: "Santorini, Greece",
		Location:         maps.LatLng{Latitude: 36.3932, Longitude: 25.4615},
	}, nil
}

func TestLookupCachesByNormalizedQuery(t *testing.T) {
	geo := &countingGeocoder{}
	svc := NewService(geo, nil)

	for _, q := range []string{"Santorini, Greece", "  santorini,   greece ", "SANTORINI, GREECE"} {
		res, err := svc.Lookup(context.Background(), q)
		if err != nil {
			t.Fatalf("lookup %q: %v", q, err)
		}
		if res.PlaceID != "place-santorini" {
			t.Fatalf("unexpected result %+v", res)
		}
	}
	if got := geo.calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
	if svc.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", svc.Len())
	}
}

func TestLookupDoesNotCacheErrors(t *testing.T) {
	geo := &countingGeocoder{err: pkgerrors.New(pkgerrors.CodeNotFound, "no location matches the query")}
	svc := NewService(geo, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Lookup(context.Background(), "Atlantis")
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if got := geo.calls.Load(); got != 2 {
		t.Fatalf("expected errors to be retried upstream, got %d calls", got)
	}
	if svc.Len() != 0 {
		t.Fatal("errors must not be cached")
	}
}

func TestLookupConcurrentCallersShareResult(t *testing.T) {
	geo := &countingGeocoder{}
	svc := NewService(geo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Lookup(context.Background(), "Bali"); err != nil {
				t.Errorf("lookup: %v", err)
			}
		}()
	}
	wg.Wait()
	if svc.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", svc.Len())
	}
}

func TestLookupValidation(t *testing.T) {
	svc := NewService(&countingGeocoder{}, nil)
	if _, err := svc.Lookup(context.Background(), "   "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	unconfigured := NewService(nil, nil)
	if _, err := unconfigured.Lookup(context.Background(), "Bali"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

// Package geocode places destinations on the map. Results are cached in
// process for the life of the server and never expire.
package geocode

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
)

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*maps.GeocodeResult, error)
}

type Service struct {
	geocoder Geocoder
	logg     *logger.Logger

	mu    sync.RWMutex
	cache map[string]maps.GeocodeResult
	group singleflight.Group
}

func NewService(geocoder Geocoder, logg *logger.Logger) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		geocoder: geocoder,
		logg:     logg,
		cache:    make(map[string]maps.GeocodeResult),
	}
}

// Lookup returns the cached result for query or asks the geocoder once.
// Misses and errors are not cached.
func (s *Service) Lookup(ctx context.Context, query string) (*maps.GeocodeResult, error) {
	key := cacheKey(query)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	if s.geocoder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoding is not configured")
	}

	s.mu.RLock()
	hit, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return &hit, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		res, err := s.geocoder.Geocode(ctx, query)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[key] = *res
		s.mu.Unlock()
		s.logg.Debug(s.logg.WithField(ctx, "query", key), "geocode.cached")
		return *res, nil
	})
	if err != nil {
		return nil, err
	}
	out := v.(maps.GeocodeResult)
	return &out, nil
}

// Len reports how many queries are cached.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

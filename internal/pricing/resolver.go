// Package pricing turns an item reference into the amount charged for it.
package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

// Source names the tier that produced a unit price.
type Source string

const (
	SourceStatic   Source = "static"
	SourceStore    Source = "store"
	SourceFallback Source = "fallback"
)

const (
	DefaultFallbackUnitPriceCents int64 = 10000
	DefaultServiceFeeCents        int64 = 15000

	// MaxTravelers bounds a single booking party.
	MaxTravelers = 50
)

// PricedItem is a catalog row reduced to what pricing and display need.
type PricedItem struct {
	ID             string         `json:"id"`
	ItemType       enums.ItemType `json:"itemType"`
	Name           string         `json:"name"`
	Location       string         `json:"location,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	UnitPriceCents int64          `json:"unitPriceCents"`
}

// ItemStore reads catalog rows. A missing row is (nil, nil). UnitPriceCents
// is zero when the row has no usable price.
type ItemStore interface {
	FindPricedItem(ctx context.Context, itemType enums.ItemType, itemID string) (*PricedItem, error)
}

// Recorder observes which tier served each resolution.
type Recorder interface {
	IncPriceResolution(source string)
}

// Options configures a Resolver.
type Options struct {
	Static            *StaticTable
	Store             ItemStore
	FallbackUnitCents int64
	ServiceFeeCents   int64
	// LookupTimeout bounds the store query; zero leaves the caller's context alone.
	LookupTimeout time.Duration
	Metrics       Recorder
	Logger        *logger.Logger
}

// Resolver applies static table, then store, then fallback.
type Resolver struct {
	static        *StaticTable
	store         ItemStore
	fallback      int64
	fee           int64
	lookupTimeout time.Duration
	metrics       Recorder
	logg          *logger.Logger
}

func NewResolver(opts Options) (*Resolver, error) {
	if opts.Static == nil && opts.Store == nil {
		return nil, errors.New("pricing needs a static table or an item store")
	}
	if opts.FallbackUnitCents < 0 || opts.ServiceFeeCents < 0 {
		return nil, errors.New("pricing amounts must be non-negative")
	}
	fallback := opts.FallbackUnitCents
	if fallback == 0 {
		fallback = DefaultFallbackUnitPriceCents
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Resolver{
		static:        opts.Static,
		store:         opts.Store,
		fallback:      fallback,
		fee:           opts.ServiceFeeCents,
		lookupTimeout: opts.LookupTimeout,
		metrics:       opts.Metrics,
		logg:          logg,
	}, nil
}

// ResolvePrice returns the total in cents for travelers of the item. It
// always returns a positive amount.
func (r *Resolver) ResolvePrice(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) int64 {
	unit, _, _ := r.resolve(ctx, itemType, itemID)
	return Total(itemType, unit, travelers)
}

// ResolveUnitPrice returns the unit price and the tier that supplied it.
func (r *Resolver) ResolveUnitPrice(ctx context.Context, itemType enums.ItemType, itemID string) (int64, Source) {
	unit, source, _ := r.resolve(ctx, itemType, itemID)
	return unit, source
}

func (r *Resolver) resolve(ctx context.Context, itemType enums.ItemType, itemID string) (int64, Source, *PricedItem) {
	if cents, ok := r.static.Lookup(itemType, itemID); ok {
		r.observe(SourceStatic)
		return cents, SourceStatic, nil
	}

	item := r.lookupStore(ctx, itemType, itemID)
	if item != nil && item.UnitPriceCents > 0 {
		r.observe(SourceStore)
		return item.UnitPriceCents, SourceStore, item
	}

	r.observe(SourceFallback)
	return r.fallback, SourceFallback, item
}

func (r *Resolver) lookupStore(ctx context.Context, itemType enums.ItemType, itemID string) *PricedItem {
	if r.store == nil || itemID == "" {
		return nil
	}
	if r.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()
	}

	item, err := r.store.FindPricedItem(ctx, itemType, itemID)
	if err != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"item_type": itemType.String(),
			"item_id":   itemID,
			"error":     err.Error(),
		})
		r.logg.Warn(logCtx, "pricing.store_lookup_failed")
		return nil
	}
	return item
}

func (r *Resolver) observe(source Source) {
	if r.metrics != nil {
		r.metrics.IncPriceResolution(string(source))
	}
}

// Total applies the per-stay rule for hotels and per-traveler pricing for
// everything else. Travelers below one count as one. A product that does not
// fit in int64 saturates at math.MaxInt64 rather than wrapping.
func Total(itemType enums.ItemType, unitCents int64, travelers int) int64 {
	if travelers < 1 {
		travelers = 1
	}
	if !itemType.PricedPerTraveler() {
		return unitCents
	}
	if unitCents > math.MaxInt64/int64(travelers) {
		return math.MaxInt64
	}
	return unitCents * int64(travelers)
}

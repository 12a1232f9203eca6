package pricing

import (
	"context"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
)

// Quote is the review-step breakdown. FeesCents is shown to the customer but
// is not part of the charged amount.
type Quote struct {
	ItemType          enums.ItemType `json:"itemType"`
	ItemID            string         `json:"itemId"`
	UnitPriceCents    int64          `json:"unitPriceCents"`
	Travelers         int            `json:"travelers"`
	SubtotalCents     int64          `json:"subtotalCents"`
	FeesCents         int64          `json:"feesCents"`
	DisplayTotalCents int64          `json:"displayTotalCents"`
	Source            Source         `json:"source"`
	Item              *PricedItem    `json:"item,omitempty"`
}

// Quote prices the item the same way ResolvePrice does and adds the display fee.
func (r *Resolver) Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) Quote {
	if travelers < 1 {
		travelers = 1
	}
	unit, source, item := r.resolve(ctx, itemType, itemID)
	if item == nil && source == SourceStatic {
		// display details only; the static price stands
		item = r.lookupStore(ctx, itemType, itemID)
	}
	subtotal := Total(itemType, unit, travelers)
	return Quote{
		ItemType:          itemType,
		ItemID:            itemID,
		UnitPriceCents:    unit,
		Travelers:         travelers,
		SubtotalCents:     subtotal,
		FeesCents:         r.fee,
		DisplayTotalCents: subtotal + r.fee,
		Source:            source,
		Item:              item,
	}
}

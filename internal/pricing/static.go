package pricing

import "github.com/angelmondragon/wanderlust-backend/pkg/enums"

type itemKey struct {
	itemType enums.ItemType
	itemID   string
}

// StaticTable is the compiled-in price list for the featured demo items. It
// is the most trusted source and is consulted before the catalog store.
type StaticTable struct {
	prices map[itemKey]int64
}

// StaticEntry is one row of a static price table, priced in cents.
type StaticEntry struct {
	ItemType       enums.ItemType
	ItemID         string
	UnitPriceCents int64
}

var defaultEntries = []StaticEntry{
	{enums.ItemTypeDestination, "santorini", 129900},
	{enums.ItemTypeDestination, "bali", 89900},
	{enums.ItemTypeDestination, "kyoto", 149900},
	{enums.ItemTypeDestination, "machu-picchu", 179900},
	{enums.ItemTypeHotel, "grand-aegean", 45000},
	{enums.ItemTypeHotel, "ubud-hideaway", 32000},
	{enums.ItemTypePackage, "greek-islands", 249900},
	{enums.ItemTypePackage, "bali-wellness", 189900},
}

// DefaultStaticTable returns the demo price table.
func DefaultStaticTable() *StaticTable {
	return NewStaticTable(defaultEntries...)
}

// NewStaticTable builds a table from entries. Non-positive prices are ignored.
func NewStaticTable(entries ...StaticEntry) *StaticTable {
	prices := make(map[itemKey]int64, len(entries))
	for _, e := range entries {
		if e.UnitPriceCents <= 0 {
			continue
		}
		prices[itemKey{e.ItemType, e.ItemID}] = e.UnitPriceCents
	}
	return &StaticTable{prices: prices}
}

// Lookup returns the unit price for the item, if listed.
func (t *StaticTable) Lookup(itemType enums.ItemType, itemID string) (int64, bool) {
	if t == nil {
		return 0, false
	}
	cents, ok := t.prices[itemKey{itemType, itemID}]
	return cents, ok
}

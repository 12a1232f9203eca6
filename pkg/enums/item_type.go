package enums

import (
	"fmt"
	"strings"
)

// ItemType identifies which catalog a bookable item lives in.
type ItemType string

const (
	ItemTypeHotel       ItemType = "hotel"
	ItemTypePackage     ItemType = "package"
	ItemTypeDestination ItemType = "destination"
)

var validItemTypes = []ItemType{
	ItemTypeHotel,
	ItemTypePackage,
	ItemTypeDestination,
}

// String implements fmt.Stringer.
func (i ItemType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemType.
func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// PricedPerTraveler reports whether totals scale with the traveler count.
// Hotels are priced per stay.
func (i ItemType) PricedPerTraveler() bool {
	return i != ItemTypeHotel
}

// BookingColumn names the bookings foreign-key column populated for this type.
func (i ItemType) BookingColumn() string {
	switch i {
	case ItemTypeHotel:
		return "hotel_id"
	case ItemTypePackage:
		return "package_id"
	case ItemTypeDestination:
		return "destination_id"
	default:
		return ""
	}
}

// CatalogTable names the table holding items of this type.
func (i ItemType) CatalogTable() string {
	switch i {
	case ItemTypeHotel:
		return "hotels"
	case ItemTypePackage:
		return "packages"
	case ItemTypeDestination:
		return "destinations"
	default:
		return ""
	}
}

// ParseItemType converts raw input into an ItemType. Matching is case-insensitive.
func ParseItemType(value string) (ItemType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validItemTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}

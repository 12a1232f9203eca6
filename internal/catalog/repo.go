// Package catalog reads hotels, packages and destinations for pricing and display.
package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/internal/repo"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/money"
)

// Repository implements pricing.ItemStore over the catalog tables.
type Repository struct {
	repo.Base
}

var _ pricing.ItemStore = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindPricedItem loads the item from the table implied by itemType. Missing
// rows yield (nil, nil); a missing or unparsable price leaves UnitPriceCents at zero.
func (r *Repository) FindPricedItem(ctx context.Context, itemType enums.ItemType, itemID string) (*pricing.PricedItem, error) {
	query := r.DB(ctx).Where("id = ?", itemID)

	switch itemType {
	case enums.ItemTypeHotel:
		row, err := repo.FirstOrNil[models.Hotel](query)
		if err != nil || row == nil {
			return nil, wrapLookup(itemType, err)
		}
		return priced(itemType, row.ID, row.Name, row.Location, row.Price, row.ImageURL), nil
	case enums.ItemTypePackage:
		row, err := repo.FirstOrNil[models.Package](query)
		if err != nil || row == nil {
			return nil, wrapLookup(itemType, err)
		}
		return priced(itemType, row.ID, row.Title, row.Location, row.Price, row.ImageURL), nil
	case enums.ItemTypeDestination:
		row, err := repo.FirstOrNil[models.Destination](query)
		if err != nil || row == nil {
			return nil, wrapLookup(itemType, err)
		}
		return priced(itemType, row.ID, row.Name, row.Location, row.Price, row.ImageURL), nil
	default:
		return nil, fmt.Errorf("unsupported item type %q", itemType)
	}
}

func wrapLookup(itemType enums.ItemType, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("lookup %s: %w", itemType.CatalogTable(), err)
}

func priced(itemType enums.ItemType, id, name, location string, price, imageURL *string) *pricing.PricedItem {
	item := &pricing.PricedItem{
		ID:       id,
		ItemType: itemType,
		Name:     name,
		Location: location,
	}
	if imageURL != nil {
		item.ImageURL = *imageURL
	}
	if price != nil {
		if cents, err := money.ParseCents(*price); err == nil {
			item.UnitPriceCents = cents
		}
	}
	return item
}

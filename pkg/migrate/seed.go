package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
)

func strPtr(v string) *string { return &v }

// Demo catalog rows. Prices are typed the way editors enter them. Items
// here that are missing from the static price table exercise the store tier.
var (
	seedHotels = []models.Hotel{
		{ID: "grand-aegean", Name: "Grand Aegean Resort", Location: "Santorini, Greece", Price: strPtr("$450"), ImageURL: strPtr("/images/hotels/grand-aegean.jpg")},
		{ID: "alpine-lodge", Name: "Alpine Lodge", Location: "Zermatt, Switzerland", Price: strPtr("$1,200"), ImageURL: strPtr("/images/hotels/alpine-lodge.jpg")},
		{ID: "kyoto-ryokan", Name: "Kyoto Garden Ryokan", Location: "Kyoto, Japan", Price: strPtr("¥ 380.50 / night"), ImageURL: strPtr("/images/hotels/kyoto-ryokan.jpg")},
	}
	seedPackages = []models.Package{
		{ID: "greek-islands", Title: "Greek Islands Explorer", Location: "Cyclades, Greece", Price: strPtr("$2,499"), ImageURL: strPtr("/images/packages/greek-islands.jpg")},
		{ID: "patagonia-trek", Title: "Patagonia Trek", Location: "El Chaltén, Argentina", Price: strPtr("$3,150.00"), ImageURL: strPtr("/images/packages/patagonia.jpg")},
		{ID: "mystery-tour", Title: "Mystery Tour", Location: "Somewhere", Price: strPtr("Contact us"), ImageURL: nil},
	}
	seedDestinations = []models.Destination{
		{ID: "santorini", Name: "Santorini", Location: "Greece", Price: strPtr("$1,299"), ImageURL: strPtr("/images/destinations/santorini.jpg")},
		{ID: "bali", Name: "Bali", Location: "Indonesia", Price: strPtr("$899"), ImageURL: strPtr("/images/destinations/bali.jpg")},
		{ID: "reykjavik", Name: "Reykjavík", Location: "Iceland", Price: strPtr("$1,050"), ImageURL: strPtr("/images/destinations/reykjavik.jpg")},
	}
)

// SeedDemoCatalog inserts the demo catalog, skipping rows that already exist.
// It returns the number of rows inserted.
func SeedDemoCatalog(ctx context.Context, client *db.Client) (int64, error) {
	var inserted int64
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		for _, batch := range []any{&seedHotels, &seedPackages, &seedDestinations} {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(batch)
			if res.Error != nil {
				return fmt.Errorf("insert seed rows: %w", res.Error)
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode and the feature flag is enabled, then seeds the demo catalog.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "dialect": client.Dialect()}
	ctx = logg.WithFields(ctx, meta)

	if client.Dialect() == "sqlite3" {
		logg.Info(ctx, "running gorm auto-migrate (sqlite)")
		if err := AutoMigrate(ctx, client); err != nil {
			return err
		}
	} else {
		sqlDB, err := client.SQL()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		logg.Info(ctx, "running Goose migrations (dev auto-run)")
		if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
			return fmt.Errorf("running goose up: %w", err)
		}
	}

	inserted, err := SeedDemoCatalog(ctx, client)
	if err != nil {
		return fmt.Errorf("seeding demo catalog: %w", err)
	}

	logg.Info(logg.WithField(ctx, "seeded_rows", inserted), "migrations completed")
	return nil
}

// AutoMigrate creates the schema from the gorm models. It backs sqlite, where
// the Postgres SQL migrations cannot run.
func AutoMigrate(ctx context.Context, client *db.Client) error {
	err := client.DB().WithContext(ctx).AutoMigrate(
		&models.Hotel{},
		&models.Package{},
		&models.Destination{},
		&models.Booking{},
		&models.PaymentIntent{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

package migrate

import (
	"context"
	"fmt"

	"github.com/registra-app/registra-backend/pkg/config"
	"github.com/registra-app/registra-backend/pkg/db"
	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/logger"
)

// AutoSchema normalizes the schema from the GORM models. It is idempotent and
// is the migration path for embedded SQLite installs, where the goose SQL
// files (written for Postgres) do not apply.
func AutoSchema(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	if logg != nil {
		logg.Info(ctx, "running schema automigration")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// MaybeRunStartup applies schema management on boot when enabled: goose for
// Postgres, automigration for SQLite. SQLite always runs (the embedded build
// has no operator to run a migrate CLI); Postgres requires the flag plus dev.
func MaybeRunStartup(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.DB.Driver == config.DriverSQLite {
		return AutoSchema(ctx, client, logg)
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, cfg.DB.Driver, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

package migrate

import (
	"context"
	"fmt"

	"github.com/Weilei424/leafwheels-sub000/pkg/config"
	"github.com/Weilei424/leafwheels-sub000/pkg/db"
	"github.com/Weilei424/leafwheels-sub000/pkg/logger"
)

// MaybeRunDev applies pending migrations on startup, but only in dev and only
// when the auto-migrate flag is on. Production schemas move via cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "applying dev migrations")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "dev migrations applied")
	return nil
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/config"
)

// Migrate aplica las migraciones pendientes del esquema. Un esquema ya al día
// no es error.
func Migrate(cfg config.DBConfig) error {
	if cfg.MigrationsDir == "" {
		return nil
	}
	m, err := migrate.New(cfg.MigrationsDir, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("crear migrador: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	return nil
}

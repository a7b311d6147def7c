package service

import (
	"database/sql"
	"fmt"

	"checklist-safety/common/database"
	"checklist-safety/internal/config"
	"checklist-safety/internal/repository"
	"checklist-safety/internal/supabase"

	"go.uber.org/zap"
)

// OpenStore connects the configured data source. db is nil unless the
// source is Postgres; the caller closes it.
func OpenStore(cfg *config.Config, logger *zap.Logger) (store repository.Store, db *sql.DB, err error) {
	switch cfg.DataSource {
	case config.DataSourcePostgres:
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresStore(db, logger), db, nil
	case config.DataSourceSupabase:
		return supabase.NewClient(&cfg.Supabase, logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported data source: %s", cfg.DataSource)
	}
}

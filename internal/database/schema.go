package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"recipebox/internal/config"
	"recipebox/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted in DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do and where the versioned
// migrations stand.
type SchemaStatus struct {
	Mode               string      `json:"mode"`
	Environment        string      `json:"environment"`
	Driver             string      `json:"driver"`
	WillRunSQL         bool        `json:"willRunSql"`
	WillRunAutoMigrate bool        `json:"willRunAutoMigrate"`
	AppliedVersions    []int       `json:"appliedVersions"`
	PendingMigrations  []Migration `json:"-"`
	Pending            []string    `json:"pending"`
	// Problem is set when RunMigrations would refuse to run.
	Problem string `json:"problem,omitempty"`
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// schemaPolicy decides which schema steps run. The embedded SQL is written for
// PostgreSQL, so SQLite always falls back to AutoMigrate.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := normalizedSchemaMode(cfg)
	switch mode {
	case SchemaModeSQL, SchemaModeAuto, SchemaModeHybrid:
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}

	if cfg.DBDriver == "sqlite" {
		return false, true, nil
	}

	prodLike := isProdLikeEnv(cfg.Env)
	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		return false, true, nil
	default:
		// hybrid: versioned SQL everywhere, AutoMigrate only outside prod-like envs.
		return true, !prodLike, nil
	}
}

// AutoMigrate creates or updates every persistent table from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the schema up to date according to the configured mode.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}
	mode := normalizedSchemaMode(cfg)

	if runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !runAuto {
		return nil
	}

	if mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
		middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
	}
	middleware.Logger.Info("Running GORM AutoMigrate",
		slog.String("mode", mode),
		slog.String("env", cfg.Env),
		slog.String("driver", db.Dialector.Name()),
	)
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the schema policy and, when versioned SQL is in
// play, which migrations are applied or pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               normalizedSchemaMode(cfg),
		Environment:        cfg.Env,
		Driver:             db.Dialector.Name(),
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
		AppliedVersions:    []int{},
		Pending:            []string{},
	}
	if !runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	registered := GetMigrations()
	status.AppliedVersions = appliedVersions(applied)
	status.PendingMigrations = pendingMigrations(applied, registered)
	for i := range status.PendingMigrations {
		status.Pending = append(status.Pending, status.PendingMigrations[i].String())
	}

	if err := validateAppliedVersions(status.AppliedVersions, registered); err != nil {
		status.Problem = err.Error()
	} else if err := verifyChecksums(applied, registered); err != nil {
		status.Problem = err.Error()
	}
	return status, nil
}

// Command migrate applies, inspects and rolls back the recipe store schema.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
)

const usageText = `usage: migrate <command>
  up              apply pending SQL migrations
  auto            run GORM AutoMigrate for every record table
  status          print the schema policy and pending migrations as JSON
  down [version]  roll back one migration (latest when version is omitted)`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usageText) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipSchema: true})
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := middleware.Logger
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if cfg.DBDriver == "sqlite" {
			return fmt.Errorf("versioned SQL migrations target PostgreSQL; use 'auto' with DB_DRIVER=sqlite")
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		logger.Info("SQL migrations applied")

	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		logger.Info("AutoMigrate applied")

	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return err
		}
		if status.Problem != "" {
			return fmt.Errorf("schema problem: %s", status.Problem)
		}

	case "down":
		version := 0
		if len(args) > 1 {
			version, err = strconv.Atoi(args[1])
			if err != nil || version <= 0 {
				return fmt.Errorf("invalid version %q", args[1])
			}
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		logger.Info("Rollback complete", slog.Int("requested_version", version))

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usageText)
	}
	return nil
}

package database

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"

	"recipebox/internal/middleware"
)

// Migration is one versioned schema change loaded from
// migrations/NNNNNN_name.up.sql and its matching .down.sql.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
	// Checksum is the hex SHA-256 of UpScript. It is stored with the applied
	// version so an edited migration is caught on the next run.
	Checksum string
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	migrations        []Migration
	migrationFileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
)

func init() {
	if err := RegisterMigrations(migrationFS); err != nil {
		middleware.Logger.Error("failed to register embedded migrations", slog.String("error", err.Error()))
	}
}

// RegisterMigrations adds every migration found under migrations/ in fsys
// and keeps the registry sorted by version. A version may only be
// registered once.
func RegisterMigrations(fsys fs.FS) error {
	loaded, err := loadMigrations(fsys)
	if err != nil {
		return err
	}
	for _, m := range loaded {
		if GetMigrationByVersion(m.Version) != nil {
			return fmt.Errorf("duplicate migration version %s", &m)
		}
	}
	migrations = append(migrations, loaded...)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return nil
}

// loadMigrations pairs up/down scripts under migrations/ in fsys. Each up
// script needs a down script with the same version and name.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	found := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := migrationFileName.FindStringSubmatch(entry.Name())
		if m == nil {
			middleware.Logger.Warn("Skipping file with invalid migration name", slog.String("file", entry.Name()))
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", entry.Name(), err)
		}

		raw, err := fs.ReadFile(fsys, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		mig, ok := found[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			found[version] = mig
		} else if mig.Name != m[2] {
			return nil, fmt.Errorf("migration %06d has mismatched names %q and %q", version, mig.Name, m[2])
		}
		if m[3] == "up" {
			mig.UpScript = string(raw)
		} else {
			mig.DownScript = string(raw)
		}
	}

	out := make([]Migration, 0, len(found))
	for _, mig := range found {
		if mig.UpScript == "" {
			return nil, fmt.Errorf("migration %s has no up script", mig)
		}
		if mig.DownScript == "" {
			return nil, fmt.Errorf("migration %s has no down script", mig)
		}
		mig.Checksum = checksum(mig.UpScript)
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

// GetMigrations returns the registered migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the registered migration or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

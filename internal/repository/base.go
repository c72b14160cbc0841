// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps limit to [1, 100] (defaulting to 20) and offset to >= 0.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// instrument starts a span, a latency timer and error logging for one
// repository call. The returned func must be deferred with the call's error.
func instrument(ctx context.Context, log *observability.RepoLogger, table, op string) (context.Context, func(*error)) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, op, table)
	done := observability.TrackQuery(op, table)
	return ctx, func(errp *error) {
		done()
		var err error
		if errp != nil {
			err = *errp
		}
		var appErr *models.AppError
		if err != nil && (!errors.As(err, &appErr) || appErr.Code == models.CodeInternal) {
			log.LogError(ctx, err, op)
		}
		observability.EndSpan(span, err)
	}
}

// lockForUpdate adds SELECT ... FOR UPDATE. SQLite ignores the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

var uniqueIndexFields = map[string]string{
	"idx_users_username":             "username",
	"idx_users_email":                "email",
	"idx_user_favorites_user_recipe": "favorite",
}

// duplicateField reports whether err is a unique-index violation and, when the
// driver says which, the field it collided on.
func duplicateField(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return "", false
		}
		if field, ok := uniqueIndexFields[pgErr.ConstraintName]; ok {
			return field, true
		}
		return pgErr.ConstraintName, true
	}

	msg := strings.ToLower(err.Error())
	// SQLite: "UNIQUE constraint failed: users.email"
	if i := strings.Index(msg, "unique constraint failed:"); i >= 0 {
		cols := strings.TrimSpace(msg[i+len("unique constraint failed:"):])
		first := strings.Split(cols, ",")[0]
		if dot := strings.LastIndex(first, "."); dot >= 0 {
			first = first[dot+1:]
		}
		return strings.TrimSpace(first), true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505") {
		return "", true
	}
	return "", false
}

// translateWriteError maps unique violations to DuplicateKey and anything
// else to an internal error.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if field, ok := duplicateField(err); ok {
		if field == "" {
			field = "record"
		}
		observability.DuplicateKeyRejections.WithLabelValues(field).Inc()
		return models.NewDuplicateKeyError(field, err)
	}
	return models.NewInternalError(err)
}

// translateReadError maps a missing row to NotFound for resource/id.
func translateReadError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// escapeLike escapes LIKE wildcards so user input matches literally with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

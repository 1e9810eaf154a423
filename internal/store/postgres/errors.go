package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gosuda/kanban/internal/domain"
)

// SQLSTATE codes translated to domain errors.
const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeInsufficientPrivilege = "42501"
)

// wrapErr annotates err with caller and maps no-rows and well-known
// constraint failures onto domain sentinels.
func wrapErr(caller string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %s: %w", caller, pgErr.ConstraintName, domain.ErrConflict)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", caller, pgErr.ConstraintName, domain.ErrNotFound)
		case codeInsufficientPrivilege:
			return fmt.Errorf("%s: %w", caller, domain.ErrForbidden)
		}
	}

	return fmt.Errorf("%s: %w", caller, err)
}

// notFoundIfNone turns an Exec that touched no rows into ErrNotFound.
func notFoundIfNone(caller string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	return nil
}

// uuidStrings renders ids for an `= ANY($n::uuid[])` predicate.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

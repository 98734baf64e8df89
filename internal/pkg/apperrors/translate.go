package apperrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error classes relevant to the generic write path.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgIntegrityClass   = "23"
)

// TranslateDBError converts persistence-layer failures into the engine's
// error taxonomy. Unrecognized errors pass through untouched so callers can
// still inspect the raw driver error.
func TranslateDBError(entityType string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return &DuplicateRecordError{EntityType: entityType, Constraint: pgErr.ConstraintName, Err: err}
		case pgErr.Code == pgNotNullViolation:
			return &MissingRequiredFieldError{EntityType: entityType, Column: pgErr.ColumnName, Err: err}
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgIntegrityClass:
			return &DataIntegrityError{EntityType: entityType, Err: err}
		}
		return err
	}

	// gorm translates some driver errors itself when TranslateError is on.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateRecordError{EntityType: entityType, Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &DataIntegrityError{EntityType: entityType, Err: err}
	}

	return err
}

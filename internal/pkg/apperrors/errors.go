package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError signals that an entity is unregistered, disabled, or its
// configuration cannot be resolved. It is always raised before any I/O.
type ConfigurationError struct {
	EntityType string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for entity %q: %s", e.EntityType, e.Reason)
}

// ValidationError signals an operation disallowed for the entity's category or
// configuration, or a required field missing at the generic layer.
type ValidationError struct {
	EntityType string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for entity %q: %s", e.EntityType, e.Reason)
}

// NotFoundError signals a record absent within the caller's tenant scope.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record %q not found", e.EntityType, e.ID)
}

// DuplicateRecordError wraps a unique-constraint violation from the store.
type DuplicateRecordError struct {
	EntityType string
	Constraint string
	Err        error
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate %s record (constraint %s)", e.EntityType, e.Constraint)
}

func (e *DuplicateRecordError) Unwrap() error { return e.Err }

// MissingRequiredFieldError wraps a not-null violation, naming the column.
type MissingRequiredFieldError struct {
	EntityType string
	Column     string
	Err        error
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q on %s", e.Column, e.EntityType)
}

func (e *MissingRequiredFieldError) Unwrap() error { return e.Err }

// DataIntegrityError wraps other integrity failures from the store.
type DataIntegrityError struct {
	EntityType string
	Err        error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation on %s: %v", e.EntityType, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// BusinessRuleError signals a rejection by an entity-supplied rule, such as a
// restore-eligibility check. Reason is safe to surface to the caller.
type BusinessRuleError struct {
	EntityType string
	Reason     string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule rejected operation on %s: %s", e.EntityType, e.Reason)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"clinic-erp-be/internal/pkg/apperrors"
)

// StatusForError translates the engine's error taxonomy into HTTP statuses.
// Anything unrecognized is a 500.
func StatusForError(err error) int {
	var (
		configErr    *apperrors.ConfigurationError
		validErr     *apperrors.ValidationError
		notFoundErr  *apperrors.NotFoundError
		duplicateErr *apperrors.DuplicateRecordError
		missingErr   *apperrors.MissingRequiredFieldError
		integrityErr *apperrors.DataIntegrityError
		ruleErr      *apperrors.BusinessRuleError
	)
	switch {
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound
	case errors.As(err, &validErr), errors.As(err, &missingErr):
		return fiber.StatusBadRequest
	case errors.As(err, &duplicateErr):
		return fiber.StatusConflict
	case errors.As(err, &ruleErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &configErr):
		return fiber.StatusNotFound
	case errors.As(err, &integrityErr):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/auth"
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Calculation errors carry their own classification
	var calcErr *tax.CalculationError
	if errors.As(err, &calcErr) {
		switch calcErr.Kind {
		case tax.KindValidation:
			field := calcErr.Field
			if field == "" {
				field = "input"
			}
			ValidationError(w, map[string]string{field: calcErr.Err.Error()})
		case tax.KindDependency:
			slog.Error("Tax dependency failed", "op", calcErr.Op, "employee_id", calcErr.EmployeeID, "error", calcErr.Err)
			DependencyError(w, "Tax data source unavailable")
		default:
			slog.Error("Tax calculation failed", "op", calcErr.Op, "employee_id", calcErr.EmployeeID, "error", calcErr.Err)
			CalculationFailed(w, "Tax calculation failed")
		}
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Tax domain errors
	case errors.Is(err, tax.ErrProfileNotFound):
		NotFound(w, "Taxpayer profile not found")
	case errors.Is(err, tax.ErrSettingsUnavailable):
		DependencyError(w, "Tax data source unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

package types

import (
	"errors"
	"net/http"

	appErr "github.com/ragops/planner/pkg/errors"
)

// FromAppError maps an error to the wire representation, carrying the
// offending field for validation failures.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		return &APIError{Code: string(ae.Code), Message: ae.Message, Field: appErr.Field(err)}
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}

// StatusFor picks the HTTP status for an error code.
func StatusFor(err error) int {
	switch {
	case appErr.IsCode(err, appErr.CodeValidation):
		return http.StatusBadRequest
	case appErr.IsCode(err, appErr.CodeConflict):
		return http.StatusUnprocessableEntity
	case appErr.IsCode(err, appErr.CodeNotFound):
		return http.StatusNotFound
	case appErr.IsCode(err, appErr.CodeUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

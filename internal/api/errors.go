package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/logger"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const msgInternal = "internal server error"

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.HTTPCode() != http.StatusInternalServerError {
			return &APIError{
				status:  storeErr.HTTPCode(),
				Code:    statusToCode(storeErr.HTTPCode()),
				Message: storeErr.Message,
			}
		}
	}

	if status >= http.StatusInternalServerError {
		// Never echo internal error text to clients.
		return &APIError{
			status:  status,
			Code:    string(domainerrors.CodeInternal),
			Message: msgInternal,
		}
	}

	// huma's own request validation lands here with per-field details.
	var details []*huma.ErrorDetail
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			details = append(details, detail)
		}
	}

	// Schema violations share the status of service-side validation.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	apiErr := &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// register wraps huma.Register so every handler error leaves as an APIError
// carrying the status of the domain error behind it. Unexpected errors are
// logged with the request id before being masked.
func register[I, O any](s *Server, op huma.Operation, handler func(context.Context, *I) (*O, error)) {
	huma.Register(s.api, op, func(ctx context.Context, in *I) (*O, error) {
		out, err := handler(ctx, in)
		if err == nil {
			return out, nil
		}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		apiErr := newAPIError(http.StatusInternalServerError, msgInternal, err)
		if apiErr.GetStatus() >= http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "request failed",
				slog.String("operation", op.OperationID),
				logger.Err(err),
			)
		}
		return nil, apiErr
	})
}

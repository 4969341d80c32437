package httputil

import (
	"context"
	"errors"
	"net/http"

	"alertaUtec/internal/shared/apperrors"
)

// HTTPErrorInfo contains the HTTP status, classification and public message for an error.
type HTTPErrorInfo struct {
	Status  int
	Kind    apperrors.Kind
	Message string
}

// ErrorMapping represents a single error to HTTP status/message mapping.
type ErrorMapping struct {
	Error   error
	Status  int
	Kind    apperrors.Kind
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes and messages.
// Classified *apperrors.Error values win over registered mappings; anything
// unrecognised falls back to the default (internal) entry, so causes never leak.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

// NewErrorMapper creates a new ErrorMapper with default settings.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		mappings:       make([]ErrorMapping, 0),
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping adds an error mapping to the mapper.
func (m *ErrorMapper) WithMapping(err error, status int, kind apperrors.Kind, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Kind: kind, Message: message})
	return m
}

// WithDefault sets the default status and message for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// Map converts an error to HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperrors.KindBadInput:
			return HTTPErrorInfo{Status: http.StatusBadRequest, Kind: appErr.Kind, Message: appErr.Message}
		case apperrors.KindNotFound:
			return HTTPErrorInfo{Status: http.StatusNotFound, Kind: appErr.Kind, Message: appErr.Message}
		default:
			message := appErr.Message
			if message == "" {
				message = m.defaultMessage
			}
			return HTTPErrorInfo{Status: http.StatusInternalServerError, Kind: apperrors.KindInternal, Message: message}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Kind: apperrors.KindInternal, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Kind: apperrors.KindInternal, Message: "request cancelled"}
	}

	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			return HTTPErrorInfo{Status: mapping.Status, Kind: mapping.Kind, Message: mapping.Message}
		}
	}

	return HTTPErrorInfo{Status: m.defaultStatus, Kind: apperrors.KindInternal, Message: m.defaultMessage}
}

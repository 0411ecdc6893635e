package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	BrokerErrorBadInput           = "BROKER_BAD_INPUT"
	BrokerErrorInstanceNotFound   = "BROKER_INSTANCE_NOT_FOUND"
	BrokerErrorBindingNotFound    = "BROKER_BINDING_NOT_FOUND"
	BrokerErrorConflict           = "BROKER_CONFLICT"
	BrokerErrorHasDependents      = "BROKER_INSTANCE_HAS_BINDINGS"
	BrokerErrorBackendUnavailable = "BROKER_BACKEND_UNAVAILABLE"
	BrokerErrorInternal           = "BROKER_INTERNAL_ERROR"
)

// brokerErrorMapper classifies errors that escape the outcome path. Only the
// store's uniqueness-violation signal is recovered in the stores themselves;
// everything that reaches here is either caller input or an opaque backend
// failure, and backend failures surface as internal errors without leaking
// storage details.
func brokerErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureBrokerErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrInstanceNotFound):
		return newBrokerError(err.Error(), goerrors.CategoryNotFound, BrokerErrorInstanceNotFound)
	case errors.Is(err, ErrBindingNotFound), errors.Is(err, ErrCredentialNotFound):
		return newBrokerError(err.Error(), goerrors.CategoryNotFound, BrokerErrorBindingNotFound)
	case errors.Is(err, ErrInstanceHasBindings):
		return newBrokerError(err.Error(), goerrors.CategoryConflict, BrokerErrorHasDependents)
	case errors.Is(err, ErrConcurrentModification):
		return newBrokerError(err.Error(), goerrors.CategoryConflict, BrokerErrorConflict)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newBrokerError(err.Error(), goerrors.CategoryBadInput, BrokerErrorBadInput)
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "database is closed"):
		return newBrokerError("storage backend unavailable", goerrors.CategoryExternal, BrokerErrorBackendUnavailable)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureBrokerErrorEnvelope(mapped)
}

func newBrokerError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureBrokerErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureBrokerErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = brokerHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultBrokerTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultBrokerTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return BrokerErrorBadInput
	case goerrors.CategoryNotFound:
		return BrokerErrorInstanceNotFound
	case goerrors.CategoryConflict:
		return BrokerErrorConflict
	case goerrors.CategoryExternal:
		return BrokerErrorBackendUnavailable
	default:
		return BrokerErrorInternal
	}
}

func brokerHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

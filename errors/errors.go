package errors

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type ErrorType string

const (
	ErrNotFound         ErrorType = "ENTRY_NOT_FOUND_ERROR"
	ErrValidation       ErrorType = "VALIDATION_ERROR"
	ErrEncryption       ErrorType = "ENCRYPTION_ERROR"
	ErrSubmission       ErrorType = "SUBMISSION_ERROR"
	ErrConfirmation     ErrorType = "CONFIRMATION_ERROR"
	ErrDecrypt          ErrorType = "DECRYPT_ERROR"
	ErrAuthentication   ErrorType = "AUTHENTICATION_ERROR"
	ErrInvalidToken     ErrorType = "INVALID_TOKEN_ERROR"
	ErrFailedDependency ErrorType = "FAILED_DEPENDENCY"
	ErrFatal            ErrorType = "FATAL_ERROR"
)

// Reason narrows SUBMISSION_ERROR and CONFIRMATION_ERROR down to the
// failure the caller actually cares about.
const (
	ReasonSignerDeclined = "signer_declined"
	ReasonNodeRejected   = "node_rejected"
	ReasonReverted       = "reverted"
	ReasonTimeout        = "timeout"
)

type AppError struct {
	Code     int       `json:"-"`
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Reason   string    `json:"reason,omitempty"`
	TxHash   string    `json:"tx_hash,omitempty"`
	Internal string    `json:"internal,omitempty"`
}

func (a AppError) Error() string {
	return fmt.Sprintf("%s: %s", a.Type, a.Message)
}

func (a AppError) Serialize(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(a.Code)
	if err := json.NewEncoder(w).Encode(a); err != nil {
		panic(a)
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func HandleDataDBError(err error) AppError {
	if Is(err, sql.ErrNoRows) {
		return NewNotFoundError("resource not found")
	}
	return NewFatalError(err)
}

func HandleBindError(err error) AppError {
	if errors.As(err, &AppError{}) {
		return AsAppError(err)
	}

	if v, ok := err.(validator.ValidationErrors); ok {
		var message string
		switch v[0].ActualTag() {
		case "required":
			message = fmt.Sprintf("%s is required", v[0].Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of values: (%s), value received: %v", v[0].Field(), v[0].Param(), v[0].Value())
		case "gt":
			message = fmt.Sprintf("%s must be greater than (%s), value received: %v", v[0].Field(), v[0].Param(), v[0].Value())
		case "eth_addr":
			message = fmt.Sprintf("%s must be a valid address, value received: %v", v[0].Field(), v[0].Value())
		default:
			message = fmt.Sprintf("Validation failed on field { %s }, Condition: %s", v[0].Field(), v[0].ActualTag())
			if v[0].Param() != "" {
				message += fmt.Sprintf("{ %s }", v[0].Param())
			}
			if v[0].Value() != "" && v[0].Value() != nil {
				message += fmt.Sprintf(", Value Received: %v", v[0].Value())
			}
		}

		return AppError{
			Code:     http.StatusBadRequest,
			Type:     ErrValidation,
			Message:  message,
			Internal: err.Error(),
		}
	}
	if Is(err, io.EOF) {
		return NewValidationError("No request body")
	}

	vErr := NewValidationError("invalid request received")
	vErr.Internal = err.Error()

	return vErr
}

func NewValidationError(msg string) AppError {
	return AppError{
		Code:    http.StatusBadRequest,
		Type:    ErrValidation,
		Message: msg,
	}
}

// NewEncryptionError wraps a failure from the encryption service. The
// underlying error stays internal so relayer exception details never
// cross the API boundary.
func NewEncryptionError(err error) AppError {
	return AppError{
		Code:     http.StatusFailedDependency,
		Type:     ErrEncryption,
		Message:  "encrypting amount failed",
		Internal: err.Error(),
	}
}

func NewSubmissionError(reason string, err error) AppError {
	msg := "transaction submission failed"
	if reason == ReasonSignerDeclined {
		msg = "transaction rejected by signer"
	}
	return AppError{
		Code:     http.StatusFailedDependency,
		Type:     ErrSubmission,
		Message:  msg,
		Reason:   reason,
		Internal: err.Error(),
	}
}

// NewConfirmationError carries the last known tx hash so the caller can
// inspect the transaction externally.
func NewConfirmationError(reason, txHash string, err error) AppError {
	msg := "transaction was not confirmed"
	if reason == ReasonReverted {
		msg = "transaction reverted"
	}
	e := AppError{
		Code:    http.StatusFailedDependency,
		Type:    ErrConfirmation,
		Message: msg,
		Reason:  reason,
		TxHash:  txHash,
	}
	if err != nil {
		e.Internal = err.Error()
	}
	return e
}

func NewDecryptError(err error) AppError {
	return AppError{
		Code:     http.StatusFailedDependency,
		Type:     ErrDecrypt,
		Message:  "revealing balance failed",
		Internal: err.Error(),
	}
}

func NewNotFoundError(msg string) AppError {
	return AppError{
		Code:    http.StatusNotFound,
		Type:    ErrNotFound,
		Message: msg,
	}
}

func NewAuthenticationError(msg string) AppError {
	return AppError{
		Code:    http.StatusUnauthorized,
		Type:    ErrAuthentication,
		Message: msg,
	}
}

func NewInvalidTokenError() AppError {
	return AppError{
		Code:    http.StatusUnauthorized,
		Type:    ErrInvalidToken,
		Message: "Invalid token",
	}
}

func NewFatalError(err error) AppError {
	return AppError{
		Code:     http.StatusInternalServerError,
		Type:     ErrFatal,
		Message:  "Oops! something happened on our end.",
		Internal: err.Error(),
	}
}

func NewUnknownError(err any) AppError {
	return NewFatalError(fmt.Errorf("%v", err))
}

func NewFailedDependencyError(msg string) AppError {
	return AppError{
		Code:    http.StatusFailedDependency,
		Type:    ErrFailedDependency,
		Message: msg,
	}
}

func AsAppError(err error) AppError {
	apperr := new(AppError)
	if errors.As(err, apperr) {
		return *apperr
	}
	return NewFatalError(err)
}

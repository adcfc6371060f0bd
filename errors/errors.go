package errors

import (
	stdErrors "errors"
	"fmt"
)

const (
	ErrCodeNotFound           = "NOT FOUND"
	ErrCodeInvalidCredential  = "INVALID CREDENTIAL"
	ErrCodeInvalidAmount      = "INVALID AMOUNT"
	ErrCodeInvalidInput       = "INVALID INPUT"
	ErrCodeStorageUnavailable = "STORAGE UNAVAILABLE"
	ErrCodeAuth               = "UNAUTHORIZED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL"
)

// Sentinels for errors.Is checks. Only the Code takes part in matching.
var (
	ErrNotFound           = ErrorResponse{Code: ErrCodeNotFound, Message: "not found"}
	ErrInvalidCredential  = ErrorResponse{Code: ErrCodeInvalidCredential, Message: "invalid credential"}
	ErrInvalidAmount      = ErrorResponse{Code: ErrCodeInvalidAmount, Message: "invalid amount"}
	ErrInvalidInput       = ErrorResponse{Code: ErrCodeInvalidInput, Message: "invalid input"}
	ErrStorageUnavailable = ErrorResponse{Code: ErrCodeStorageUnavailable, Message: "storage unavailable"}
	ErrAuth               = ErrorResponse{Code: ErrCodeAuth, Message: "unauthorized"}
	ErrConflict           = ErrorResponse{Code: ErrCodeConflict, Message: "conflict"}
	ErrInternal           = ErrorResponse{Code: ErrCodeInternal, Message: "internal error"}
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

// Is reports whether target is an ErrorResponse with the same code.
func (e ErrorResponse) Is(target error) bool {
	t, ok := target.(ErrorResponse)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code string, message string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// CodeOf returns the code of the first ErrorResponse in err's chain,
// or ErrCodeInternal if there is none.
func CodeOf(err error) string {
	var appErr ErrorResponse
	if stdErrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the user facing message of the first ErrorResponse in err's chain.
func MessageOf(err error) string {
	var appErr ErrorResponse
	if stdErrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong, try again later."
}

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors carry the exact messages the API returns, so handlers can
// map them straight into the response envelope.
var (
	ErrUserAlreadyExists  = errors.New("User with the provided email already exist")
	ErrUserCreateFailed   = errors.New("User registration failed!")
	ErrInvalidCredentials = errors.New("Invalid user credentials provided")
	ErrUserNotFound       = errors.New("User not found, Please register")
	ErrResetTokenInvalid  = errors.New("Reset password token is invalid or expired, please try again.")

	ErrUnauthorized = errors.New("unauthorized access")
	ErrTokenInvalid = errors.New("token is invalid")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// internal/domain/identity/errors.go
package identity

import "errors"

// Error codes for authentication failures
const (
	CodeInvalidEmail      = "invalid-email"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeInvalidCredential = "invalid-credential"
	CodeEmailInUse        = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeSessionExpired    = "session-expired"
)

const loginFailedMessage = "Login failed. Please try again."

var messages = map[string]string{
	CodeInvalidEmail:      "Please enter a valid email address.",
	CodeUserNotFound:      "User not registered. Please register first.",
	CodeWrongPassword:     "Incorrect password. Please try again.",
	CodeInvalidCredential: "User not registered. Please register first.",
	CodeEmailInUse:        "An account with this email already exists. Please log in.",
	CodeWeakPassword:      "Password should be at least 6 characters.",
	CodeSessionExpired:    "Your session has expired. Please log in again.",
}

// Error is an authentication failure with a message fit for the user
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so callers can compare against the sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code string, cause error) *Error {
	return &Error{Code: code, Message: MessageFor(code), Err: cause}
}

var (
	ErrInvalidEmail      = newError(CodeInvalidEmail, nil)
	ErrUserNotFound      = newError(CodeUserNotFound, nil)
	ErrWrongPassword     = newError(CodeWrongPassword, nil)
	ErrInvalidCredential = newError(CodeInvalidCredential, nil)
	ErrEmailInUse        = newError(CodeEmailInUse, nil)
	ErrWeakPassword      = newError(CodeWeakPassword, nil)
	ErrSessionExpired    = newError(CodeSessionExpired, nil)
)

// MessageFor maps an error code to its user-facing message
func MessageFor(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return loginFailedMessage
}

// UserMessage returns the message to show for any sign-in or sign-up error
func UserMessage(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return loginFailedMessage
}

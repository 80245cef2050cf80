// Package apperror defines the error type business packages use to carry
// an HTTP status alongside a stable, client-facing message. Handlers can
// branch on sentinel values with errors.Is while the response layer maps
// any wrapped AppError to the right status code.
package apperror

// AppError is a business error with an HTTP status code.
type AppError struct {
	Code    int    // HTTP status code (e.g. 400, 404, 409)
	Message string // stable user-facing message, safe to branch on client-side
	Err     error  // underlying cause, never exposed to the client
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

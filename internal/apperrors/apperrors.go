package apperrors

import "net/http"

// AppError is a business error carrying the HTTP status it should be
// reported with. Handlers attach these to the gin context; the error
// middleware translates the last one into the response envelope.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

func Auth(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

func Internal(message string) *AppError {
	return New(http.StatusInternalServerError, message)
}

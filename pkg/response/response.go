package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/pkg/logger"
)

// Response is the unified API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// ErrorBody is the failure envelope. Success is always false.
type ErrorBody struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError is a single rule violation on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error kinds exposed to clients.
const (
	KindValidation      = "ValidationError"
	KindNotFound        = "NotFound"
	KindInvalidFileType = "InvalidFileType"
	KindFileTooLarge    = "FileTooLarge"
	KindConflict        = "Conflict"
	KindInternal        = "InternalError"
)

// AppError represents a structured application error with HTTP status and error kind.
type AppError struct {
	HTTPStatus int          // HTTP status code (e.g. 400, 404, 500)
	Kind       string       // One of the Kind* constants
	Message    string       // Human-readable error message
	Errors     []FieldError // Field violations, validation errors only
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func NewValidation(errs ...FieldError) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindValidation, Message: "Validation errors", Errors: errs}
}

// NewFieldError is a validation error with a single violation.
func NewFieldError(field, msg string) *AppError {
	return NewValidation(FieldError{Field: field, Message: msg})
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

func NewInvalidFileType(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindInvalidFileType, Message: msg}
}

func NewFileTooLarge(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindFileTooLarge, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Kind: KindConflict, Message: msg}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List sends a 200 OK response with a collection and its size.
func List(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its status, kind and
// violations are used; otherwise the error is logged and a redacted 500 is returned.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{
			Message: appErr.Message,
			Error:   appErr.Kind,
			Errors:  appErr.Errors,
		})
		return
	}

	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", c.GetString("request_id")).
		Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorBody{
		Message: "Internal server error",
		Error:   KindInternal,
	})
}

// NotFound sends a 404 with the given message.
func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

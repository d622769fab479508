// Package response writes the JSON envelope every API endpoint answers with.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys the request middleware fills and the envelope reads.
const (
	ContextRequestID     = "request_id"
	ContextCorrelationID = "correlation_id"
	ContextUserID        = "user_id"
)

type Meta struct {
	RequestID     string      `json:"request_id,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Pagination    *Pagination `json:"pagination,omitempty"`
	UserID        string      `json:"user_id,omitempty"`
}

type Pagination struct {
	Page  int  `json:"page"`
	Size  int  `json:"size"`
	Total *int `json:"total,omitempty"`
}

// NewPagination derives a 1-based page number from an offset.
func NewPagination(limit, offset uint32, total int) *Pagination {
	if limit == 0 {
		return nil
	}
	return &Pagination{
		Page:  int(offset/limit) + 1,
		Size:  int(limit),
		Total: &total,
	}
}

type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   string       `json:"details,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
	Retryable bool         `json:"retryable"`
}

type okEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    Meta `json:"meta"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
	Meta    Meta      `json:"meta"`
}

func meta(c *gin.Context, p *Pagination) Meta {
	m := Meta{
		RequestID:     c.GetString(ContextRequestID),
		CorrelationID: c.GetString(ContextCorrelationID),
		Pagination:    p,
		UserID:        c.GetString(ContextUserID),
	}
	if m.CorrelationID == "" {
		m.CorrelationID = m.RequestID
	}
	return m
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, okEnvelope{Success: true, Data: data, Meta: meta(c, nil)})
}

func Page(c *gin.Context, data any, p *Pagination) {
	c.JSON(http.StatusOK, okEnvelope{Success: true, Data: data, Meta: meta(c, p)})
}

func Created(c *gin.Context, location string, data any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, okEnvelope{Success: true, Data: data, Meta: meta(c, nil)})
}

// Error writes an error envelope and aborts the handler chain.
func Error(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: body, Meta: meta(c, nil)})
}

func BadRequest(c *gin.Context, message, details string) {
	Error(c, http.StatusBadRequest, ErrorBody{Code: "BAD_REQUEST", Message: message, Details: details})
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, ErrorBody{Code: "UNAUTHORIZED", Message: message})
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrorBody{Code: "NOT_FOUND", Message: message})
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, ErrorBody{Code: "CONFLICT", Message: message})
}

func Unprocessable(c *gin.Context, message string, fields []FieldError) {
	Error(c, http.StatusUnprocessableEntity, ErrorBody{Code: "VALIDATION_ERROR", Message: message, Fields: fields})
}

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, ErrorBody{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred.", Retryable: true})
}

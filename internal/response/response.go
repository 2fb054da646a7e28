package response

import (
	"encoding/json"
	"net/http"
	"time"

	"merithub/internal/middleware"
	"merithub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Meta      *Meta        `json:"meta,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta contains metadata about the response
type Meta struct {
	Pagination *PaginationMeta        `json:"pagination,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// PaginationMeta contains pagination information
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta derives page counts from a total.
func NewPaginationMeta(page, pageSize int, total int64) *PaginationMeta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder helps construct standardized responses
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Success writes a 200 response with data
func (b *Builder) Success(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: data})
}

// SuccessWithMeta writes a 200 response with data and metadata
func (b *Builder) SuccessWithMeta(w http.ResponseWriter, r *http.Request, data interface{}, meta *Meta) {
	b.writeJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: data, Meta: meta})
}

// Created writes a 201 response with data
func (b *Builder) Created(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, http.StatusCreated, &APIResponse{Success: true, Data: data})
}

// Status writes a success-shaped response with an explicit status code
func (b *Builder) Status(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	b.writeJSON(w, r, status, &APIResponse{Success: status < 400, Data: data})
}

// Accepted writes a 202 response with data
func (b *Builder) Accepted(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, http.StatusAccepted, &APIResponse{Success: true, Data: data})
}

// NoContent writes an empty 204 response
func (b *Builder) NoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response, mapping ServiceError types to status codes
func (b *Builder) Error(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)

	detail := &ErrorDetail{
		Type:    serviceErr.Type,
		Message: serviceErr.Message,
		Code:    serviceErr.Code,
		Details: serviceErr.Details,
	}

	status := serviceErr.GetStatusCode()
	if status >= 500 {
		b.logger.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		// Internal details never leave the service.
		detail.Message = "Internal server error"
		detail.Details = nil
	}

	b.writeJSON(w, r, status, &APIResponse{Success: false, Error: detail})
}

func (b *Builder) writeJSON(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.RequestID = middleware.GetRequestID(r.Context())
	resp.Timestamp = time.Now().Unix()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode response",
			zap.String("request_id", resp.RequestID),
			zap.Error(err),
		)
	}
}

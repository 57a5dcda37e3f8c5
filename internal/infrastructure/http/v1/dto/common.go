// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/pkg/jalaali"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Deletion ---

type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}

// --- Dates ---

// DateInput accepts an RFC3339 instant or a Jalaali YYYY/MM/DD day in any
// digit set. The instant wins when both are sent.
type DateInput struct {
	Date       *time.Time `json:"date"`
	JalaliDate string     `json:"jalaliDate"`
}

// Resolve returns the instant in UTC. A Jalaali day resolves to its Tehran
// midnight.
func (in DateInput) Resolve() (time.Time, error) {
	if in.Date != nil && !in.Date.IsZero() {
		return in.Date.UTC(), nil
	}
	if strings.TrimSpace(in.JalaliDate) == "" {
		return time.Time{}, apperror.NewFieldValidation("date", "date or jalaliDate is required")
	}
	t, ok := jalaali.ParseTime(in.JalaliDate)
	if !ok {
		return time.Time{}, apperror.NewFieldValidation("jalaliDate", "invalid Jalaali date, expected YYYY/MM/DD")
	}
	return t.UTC(), nil
}

// ParseOptionalID parses a nullable id field.
func ParseOptionalID(field string, s *string) (*id.ID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := id.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, apperror.NewFieldValidation(field, "invalid id format")
	}
	return &v, nil
}

// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/infrastructure/http/v1/dto"
	"anbar/internal/infrastructure/http/v1/middleware"
	"anbar/pkg/jalaali"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, middleware.BindError(err, "invalid request body"))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, middleware.BindError(err, "invalid query parameters"))
		return false
	}
	return true
}

// Error processes error and sends appropriate response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

// HandleError registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID parses a path parameter as an id.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	v, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewFieldValidation(param, "invalid id format"))
		return id.Nil(), false
	}
	return v, true
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolQuery returns nil when the parameter is absent or not a boolean.
func (h *BaseHandler) ParseBoolQuery(c *gin.Context, key string) *bool {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

// ParseIDsQuery parses a repeated or comma separated id parameter.
func (h *BaseHandler) ParseIDsQuery(c *gin.Context, key string) ([]id.ID, bool) {
	var out []id.ID
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := id.Parse(part)
			if err != nil {
				h.Error(c, apperror.NewFieldValidation(key, "invalid id format"))
				return nil, false
			}
			out = append(out, v)
		}
	}
	return out, true
}

// ParseTimeQuery parses a date bound. RFC3339 instants are used as is. Day
// values, Gregorian YYYY-MM-DD or Jalaali YYYY/MM/DD in any digit set, resolve
// to the start of the day in Tehran, or to its last instant when endOfDay is set.
func (h *BaseHandler) ParseTimeQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, bool) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, true
	}
	t, err := parseDateParam(val, endOfDay)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return &t, true
}

func parseDateParam(val string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), nil
	}

	var day time.Time
	if t, err := time.ParseInLocation(time.DateOnly, val, jalaali.Location()); err == nil {
		day = t
	} else if t, ok := jalaali.ParseTime(val); ok {
		day = t
	} else {
		return time.Time{}, apperror.NewValidation("invalid date, expected RFC3339, YYYY-MM-DD or Jalaali YYYY/MM/DD").
			WithDetail("value", val)
	}

	if endOfDay {
		return jalaali.EndOfDay(day).UTC(), nil
	}
	return day.UTC(), nil
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}

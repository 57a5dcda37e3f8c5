package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/infrastructure/http/v1/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestParseDateParam(t *testing.T) {
	tehranDay := time.Date(2024, 12, 20, 20, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in       string
		endOfDay bool
		want     time.Time
	}{
		{"rfc3339 kept", "2024-12-21T10:00:00+03:30", false, time.Date(2024, 12, 21, 6, 30, 0, 0, time.UTC)},
		{"gregorian day", "2024-12-21", false, tehranDay},
		{"jalaali ascii", "1403/10/01", false, tehranDay},
		{"jalaali persian digits", "۱۴۰۳/۱۰/۰۱", false, tehranDay},
		{"end of day", "1403/10/01", true, tehranDay.Add(24*time.Hour - time.Nanosecond)},
		{"rfc3339 ignores end of day", "2024-12-21T00:00:00Z", true, time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDateParam(tt.in, tt.endOfDay)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := parseDateParam("1403/13/01", false)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestBaseHandler_ParseTimeQueryRejectsGarbage(t *testing.T) {
	h := NewBaseHandler()
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		if _, ok := h.ParseTimeQuery(c, "from", false); !ok {
			return
		}
		h.OK(c, gin.H{"ok": true})
	})

	w := do(t, r, http.MethodGet, "/x?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBaseHandler_ParseIDsQuery(t *testing.T) {
	h := NewBaseHandler()
	r := newEngine()
	var got int
	r.GET("/x", func(c *gin.Context) {
		ids, ok := h.ParseIDsQuery(c, "productId")
		if !ok {
			return
		}
		got = len(ids)
		h.NoContent(c)
	})

	a, b := "0194f5a2-7c1e-7000-8000-000000000001", "0194f5a2-7c1e-7000-8000-000000000002"
	w := do(t, r, http.MethodGet, "/x?productId="+a+","+b+"&productId="+a, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, got)

	w = do(t, r, http.MethodGet, "/x?productId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

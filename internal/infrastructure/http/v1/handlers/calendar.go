package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anbar/internal/core/apperror"
	"anbar/internal/domain/company"
	"anbar/internal/infrastructure/http/v1/dto"
	"anbar/pkg/jalaali"
)

// CalendarHandler exposes Jalaali date helpers.
type CalendarHandler struct {
	*BaseHandler
	now func() time.Time
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(base *BaseHandler) *CalendarHandler {
	return &CalendarHandler{BaseHandler: base, now: time.Now}
}

// Today handles GET /calendar/today
func (h *CalendarHandler) Today(c *gin.Context) {
	h.OK(c, dto.NewCalendarDay(h.now()))
}

// Convert handles GET /calendar/convert?date=. The date may be RFC3339,
// Gregorian YYYY-MM-DD or Jalaali YYYY/MM/DD.
func (h *CalendarHandler) Convert(c *gin.Context) {
	val := strings.TrimSpace(c.Query("date"))
	if val == "" {
		h.Error(c, apperror.NewFieldValidation("date", "date is required"))
		return
	}

	t, err := parseDateParam(val, false)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewCalendarDay(t))
}

// FiscalYear handles GET /calendar/fiscal-year/:year
func (h *CalendarHandler) FiscalYear(c *gin.Context) {
	year, err := strconv.Atoi(jalaali.NormalizeDigits(c.Param("year")))
	if err != nil || year < 1 || year > 3177 {
		h.Error(c, apperror.NewFieldValidation("year", "invalid Jalaali year"))
		return
	}

	first, last := jalaali.FiscalYearBoundaries(year)
	start, end := company.FiscalYearRange(year)
	h.OK(c, dto.FiscalYearResponse{
		Year:       year,
		Start:      start,
		End:        end,
		JalaliFrom: jalaali.Format(first),
		JalaliTo:   jalaali.Format(last),
		Days:       daysBetween(first, last),
		IsLeapYear: jalaali.IsLeapYear(year),
	})
}

func daysBetween(first, last jalaali.Date) int {
	a := first.Time(time.UTC)
	b := last.Time(time.UTC)
	return int(b.Sub(a).Hours()/24) + 1
}

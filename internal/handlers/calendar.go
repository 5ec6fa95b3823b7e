package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
	holidays        *services.HolidayService
}

func NewCalendarHandler(calendarService *services.CalendarService, holidays *services.HolidayService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, holidays: holidays}
}

// Deadlines lists project and task due dates in a window
// GET /api/calendar/deadlines?from=&to=
func (h *CalendarHandler) Deadlines(c *gin.Context) {
	var req services.CalendarRequest
	if err := validation.BindQuery(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.calendarService.Deadlines(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, entries, len(entries))
}

// Countries lists the holiday calendars working days can be counted against
// GET /api/calendar/countries
func (h *CalendarHandler) Countries(c *gin.Context) {
	response.Success(c, "", gin.H{
		"active":    h.holidays.Country(),
		"countries": h.holidays.GetSupportedCountries(),
	})
}

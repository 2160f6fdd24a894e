package handler

import (
	"net/http"

	"mtd/internal/calendar"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

// QuarterResponse is one quarter of a tax year with its submission deadline.
type QuarterResponse struct {
	Quarter  int    `json:"quarter"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Deadline string `json:"deadline"`
	Key      string `json:"key"`
}

type CalendarResponse struct {
	TaxYear  string            `json:"tax_year"`
	Kind     string            `json:"kind"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Quarters []QuarterResponse `json:"quarters"`
}

type CalendarHandler struct {
	defaultKind calendar.PeriodKind
}

func NewCalendarHandler(defaultKind calendar.PeriodKind) *CalendarHandler {
	return &CalendarHandler{defaultKind: defaultKind}
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/calendar/:taxYear", h.GetCalendar)
}

// GetCalendar returns the four quarters of a tax year
// @Summary      Tax year calendar
// @Description  Quarters and deadlines for the standard or calendar-quarter election
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        taxYear  path      string  true   "Tax year (YYYY-YY)"
// @Param        kind     query     string  false  "standard or calendar"
// @Success      200      {object}  response.Response{data=CalendarResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/calendar/{taxYear} [get]
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	ty, err := calendar.ParseTaxYear(c.Param("taxYear"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	kind := h.defaultKind
	if k := c.Query("kind"); k != "" {
		if kind, err = calendar.ParsePeriodKind(k); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
	}

	res := CalendarResponse{
		TaxYear: ty.String(),
		Kind:    string(kind),
		Start:   ty.Start().Format(dateLayout),
		End:     ty.End().Format(dateLayout),
	}
	for _, p := range calendar.Periods(ty, kind) {
		res.Quarters = append(res.Quarters, QuarterResponse{
			Quarter:  calendar.QuarterNumber(p.Start),
			Start:    p.Start.Format(dateLayout),
			End:      p.End.Format(dateLayout),
			Deadline: calendar.Deadline(p.End).Format(dateLayout),
			Key:      p.Key(),
		})
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

const dateLayout = "2006-01-02"

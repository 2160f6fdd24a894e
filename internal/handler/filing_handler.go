package handler

import (
	"net/http"

	"mtd/internal/hmrc"
	"mtd/internal/middleware"
	"mtd/internal/service"
	"mtd/pkg/pagination"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

type FilingHandler struct {
	filingService service.FilingService
	translator    *hmrc.Translator
}

func NewFilingHandler(filingService service.FilingService, translator *hmrc.Translator) *FilingHandler {
	return &FilingHandler{filingService: filingService, translator: translator}
}

func (h *FilingHandler) RegisterRoutes(router *gin.RouterGroup) {
	filings := router.Group("/api/filings")
	{
		filings.POST("/preview", h.Preview)
		filings.POST("/submit", middleware.RequireHmrcToken(), h.Submit)
		filings.GET("/history", h.History)
		filings.GET("/cumulative", middleware.RequireHmrcToken(), h.RetrieveCumulative)
	}
}

// Preview aggregates the ledger for one quarter and shows what would be sent
// @Summary      Preview a quarterly filing
// @Description  Aggregates transactions and adjustments, estimates the tax due and resolves the submission route. Nothing is sent.
// @Tags         filings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FilingRequest  true  "Filing Payload"
// @Success      200      {object}  response.Response{data=service.FilingPreview}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/filings/preview [post]
func (h *FilingHandler) Preview(c *gin.Context) {
	var req service.FilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	preview, err := h.filingService.Preview(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// Submit sends one quarter to the tax authority
// @Summary      Submit a quarterly filing
// @Description  Builds the fraud prevention headers for the calling device and submits the quarter. Every attempt is recorded in the submission history.
// @Tags         filings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        X-Hmrc-Token  header    string                 true   "HMRC OAuth access token"
// @Param        X-Device-Id   header    string                 true   "Registered device id"
// @Param        payload       body      service.FilingRequest  true   "Filing Payload"
// @Success      200           {object}  response.Response{data=service.SubmitResult}
// @Failure      400           {object}  response.Response{data=RejectionDetail}
// @Failure      401           {object}  response.Response
// @Failure      422           {object}  response.Response{data=RejectionDetail}
// @Failure      502           {object}  response.Response
// @Failure      503           {object}  response.Response{data=RejectionDetail}
// @Router       /api/filings/submit [post]
func (h *FilingHandler) Submit(c *gin.Context) {
	var req service.FilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	who := caller(c)
	if who.DeviceID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "X-Device-Id header is required"))
		return
	}

	res, err := h.filingService.Submit(c.Request.Context(), who, req)
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// History lists every recorded submission attempt, newest first
// @Summary      Submission history
// @Description  Append-only trail of submission attempts with their outcome
// @Tags         filings
// @Security     BearerAuth
// @Produce      json
// @Param        business_id  query     string  false  "Filter by business id"
// @Param        tax_year     query     string  false  "Filter by tax year (YYYY-YY)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=pagination.Page[service.SubmissionResponse]}
// @Failure      400          {object}  response.Response
// @Router       /api/filings/history [get]
func (h *FilingHandler) History(c *gin.Context) {
	p := pagination.Parse(c)

	subs, total, err := h.filingService.History(c.Request.Context(), middleware.UserID(c), service.HistoryQuery{
		BusinessID: c.Query("business_id"),
		TaxYear:    c.Query("tax_year"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(subs, total, p)))
}

// RetrieveCumulative reads back the year-to-date summary the authority holds
// @Summary      Retrieve cumulative summary
// @Tags         filings
// @Security     BearerAuth
// @Produce      json
// @Param        X-Hmrc-Token   header    string  true  "HMRC OAuth access token"
// @Param        X-Device-Id    header    string  true  "Registered device id"
// @Param        nino           query     string  true  "National Insurance number"
// @Param        business_id    query     string  true  "Business id"
// @Param        business_type  query     string  true  "self-employment, uk-property or foreign-property"
// @Param        tax_year       query     string  true  "Tax year (YYYY-YY)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      400            {object}  response.Response
// @Failure      422            {object}  response.Response{data=RejectionDetail}
// @Router       /api/filings/cumulative [get]
func (h *FilingHandler) RetrieveCumulative(c *gin.Context) {
	var q service.CumulativeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query: "+err.Error()))
		return
	}

	out, err := h.filingService.RetrieveCumulative(c.Request.Context(), caller(c), q)
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sanchaya/society-backend/internal/service"
	"github.com/sanchaya/society-backend/internal/util"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	profitService *service.ProfitService
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(profitService *service.ProfitService, reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		profitService: profitService,
		reportService: reportService,
	}
}

func periodParams(c echo.Context) (util.DateRange, error) {
	from, err := util.ParseDate(c.QueryParam("from"))
	if err != nil {
		return util.DateRange{}, NewValidationError(c, "Invalid from date",
			[]ValidationError{{Field: "from", Message: "Must be YYYY-MM-DD"}})
	}
	to, err := util.ParseDate(c.QueryParam("to"))
	if err != nil {
		return util.DateRange{}, NewValidationError(c, "Invalid to date",
			[]ValidationError{{Field: "to", Message: "Must be YYYY-MM-DD"}})
	}
	if to.Before(from) {
		return util.DateRange{}, NewValidationError(c, "Period end precedes its start",
			[]ValidationError{{Field: "to", Message: "Must not precede from"}})
	}
	return util.DateRange{From: from, To: to}, nil
}

// IncomeExpenditure handles GET /api/v1/reports/income-expenditure?from=..&to=..
func (h *ReportHandler) IncomeExpenditure(c echo.Context) error {
	period, err := periodParams(c)
	if err != nil {
		return err
	}

	statement, err := h.profitService.IncomeExpenditureStatement(period)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build income and expenditure statement")
		return NewInternalError(c, "Failed to build income and expenditure statement")
	}
	return c.JSON(http.StatusOK, statement)
}

// ProfitDistribution handles GET /api/v1/reports/profit-distribution?from=..&to=..
func (h *ReportHandler) ProfitDistribution(c echo.Context) error {
	period, err := periodParams(c)
	if err != nil {
		return err
	}

	distribution, err := h.profitService.CalculateProfitDistribution(period)
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate profit distribution")
		return NewInternalError(c, "Failed to calculate profit distribution")
	}
	return c.JSON(http.StatusOK, distribution)
}

// DueReport handles GET /api/v1/reports/dues?month=YYYY-MM
func (h *ReportHandler) DueReport(c echo.Context) error {
	month, err := monthParam(c, c.QueryParam("month"))
	if err != nil {
		return err
	}

	report, err := h.reportService.GetDueReport(month)
	if err != nil {
		log.Error().Err(err).Str("month", month.String()).Msg("Failed to build due report")
		return NewInternalError(c, "Failed to build due report")
	}
	return c.JSON(http.StatusOK, report)
}

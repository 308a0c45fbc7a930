package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/repository"
	"FolioPulse/internal/usecase"
	xhttp "FolioPulse/pkg/http"
	xlogger "FolioPulse/pkg/logger"
)

// CSVPort covers the CSV import/export supplement on the holdings store.
type CSVPort interface {
	ExportCSV(ctx context.Context, w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
}

// PortfolioEchoHandler exposes the analytics engine over HTTP. The advisor
// and presentation layers consume these endpoints read-only; holdings CRUD
// is the single write path.
type PortfolioEchoHandler struct {
	logger  *xlogger.Logger
	engine  *usecase.AnalyticsEngine
	fetcher *usecase.PriceFetcher
	store   drepo.HoldingsStore
	csv     CSVPort
}

func NewPortfolioEchoHandler(logger *xlogger.Logger, engine *usecase.AnalyticsEngine, fetcher *usecase.PriceFetcher, store drepo.HoldingsStore, csv CSVPort) *PortfolioEchoHandler {
	return &PortfolioEchoHandler{logger: logger, engine: engine, fetcher: fetcher, store: store, csv: csv}
}

func (h *PortfolioEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/portfolio", h.Portfolio)
	g.POST("/portfolio/refresh", h.Refresh)
	g.GET("/quote", h.Quote)
	g.GET("/history", h.History)
	g.GET("/holdings", h.ListHoldings)
	g.POST("/holdings", h.CreateHolding)
	g.PUT("/holdings/:id", h.UpdateHolding)
	g.DELETE("/holdings/:id", h.DeleteHolding)
	g.GET("/holdings/export", h.ExportHoldings)
	g.POST("/holdings/import", h.ImportHoldings)
}

func (h *PortfolioEchoHandler) Portfolio(c echo.Context) error {
	snap, err := h.engine.Compute(c.Request().Context())
	if err != nil {
		h.logger.Error("portfolio compute error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *PortfolioEchoHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	investments, err := h.store.List(ctx)
	if err != nil {
		h.logger.Error("holdings load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.fetcher.Invalidate(ctx, investments)
	return xhttp.SuccessResponse(c, h.engine.ComputeFor(ctx, investments))
}

func (h *PortfolioEchoHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quote, err := h.fetcher.FetchCurrent(c.Request().Context(), req.Symbol, models.AssetClass(req.Class))
	if err != nil {
		if errors.Is(err, usecase.ErrAllProvidersFailed) {
			return xhttp.NotFoundResponse(c, "no live price for "+req.Symbol)
		}
		h.logger.Error("quote fetch error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, quote)
}

func (h *PortfolioEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	since, ok := xhttp.ParseTime(req.Since)
	if !ok {
		return xhttp.BadRequestResponse(c, "since must be a date or RFC3339 timestamp")
	}

	quotes := make([]models.PriceQuote, 0, 365)
	for q := range h.fetcher.FetchHistory(c.Request().Context(), req.Symbol, models.AssetClass(req.Class), since) {
		quotes = append(quotes, q)
	}
	return xhttp.SuccessResponse(c, quotes)
}

func (h *PortfolioEchoHandler) ListHoldings(c echo.Context) error {
	list, err := h.store.List(c.Request().Context())
	if err != nil {
		h.logger.Error("holdings load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, list, int64(len(list)))
}

func (h *PortfolioEchoHandler) CreateHolding(c echo.Context) error {
	req := &models.HoldingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	inv, err := h.investmentFromRequest("", req)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	created, err := h.store.Add(c.Request().Context(), inv)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInvestment) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("holding create error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, created)
}

func (h *PortfolioEchoHandler) UpdateHolding(c echo.Context) error {
	req := &models.HoldingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	inv, err := h.investmentFromRequest(c.Param("id"), req)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	if err := h.store.Replace(c.Request().Context(), inv); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInvestment):
			return xhttp.BadRequestResponse(c, err.Error())
		case errors.Is(err, repository.ErrHoldingNotFound):
			return xhttp.NotFoundResponse(c, "holding "+inv.ID+" not found")
		}
		h.logger.Error("holding update error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, inv)
}

func (h *PortfolioEchoHandler) DeleteHolding(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return xhttp.NotFoundResponse(c, "holding not found")
	}
	return xhttp.NoContentResponse(c)
}

func (h *PortfolioEchoHandler) ExportHoldings(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="holdings.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return h.csv.ExportCSV(c.Request().Context(), c.Response())
}

func (h *PortfolioEchoHandler) ImportHoldings(c echo.Context) error {
	n, err := h.csv.ImportCSV(c.Request().Context(), c.Request().Body)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, map[string]int{"imported": n})
}

func (h *PortfolioEchoHandler) investmentFromRequest(id string, req *models.HoldingRequest) (models.Investment, error) {
	entryDate, ok := xhttp.ParseTime(req.EntryDate)
	if !ok {
		return models.Investment{}, errors.New("entry_date must be a date or RFC3339 timestamp")
	}
	if entryDate.After(time.Now()) {
		return models.Investment{}, errors.New("entry_date cannot be in the future")
	}
	return models.NewInvestment(id, models.AssetClass(req.AssetClass), req.DisplayName, entryDate, req.EntryPrice, req.AmountInvested, req.RiskLevel)
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
	"github.com/SscSPs/expense_tracker_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{exchangeRateService: ers}
}

// RegisterExchangeRateRoutes registers routes related to exchange rates.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.GET("/latest", h.getLatestRates)
		exchangeRates.GET("/symbols", h.getSymbols)
		exchangeRates.GET("/historical/:date", h.getHistoricalRates)
		exchangeRates.POST("/refresh", h.refreshRates)
		exchangeRates.GET("/convert", h.convert)
		exchangeRates.GET("/status", h.getStatus)
	}
}

// getLatestRates loads the latest table if needed and lists it. A failed
// load still answers with the previous table when one is held.
func (h *exchangeRateHandler) getLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.RateSearchQuery
	_ = c.ShouldBindQuery(&q)

	loadErr := h.exchangeRateService.LoadLatest(c.Request.Context())
	rows := h.exchangeRateService.FilterRates(q.Search)
	if loadErr != nil && h.exchangeRateService.Latest().IsEmpty() {
		h.respondLoadError(c, logger, loadErr, h.exchangeRateService.Snapshot().Latest, "Failed to load latest rates")
		return
	}
	if loadErr != nil {
		logger.Warn("Serving previous latest rates after failed load", slog.String("error", loadErr.Error()))
	}

	c.JSON(http.StatusOK, dto.RateListResponse{
		Base:      domain.BaseCurrency,
		Freshness: h.exchangeRateService.Snapshot().Latest.Freshness,
		Rates:     rows,
	})
}

func (h *exchangeRateHandler) getSymbols(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.RateSearchQuery
	_ = c.ShouldBindQuery(&q)

	loadErr := h.exchangeRateService.LoadSymbols(c.Request.Context())
	rows := h.exchangeRateService.FilterSymbols(q.Search)
	if loadErr != nil && h.exchangeRateService.Symbols().IsEmpty() {
		h.respondLoadError(c, logger, loadErr, h.exchangeRateService.Snapshot().Symbols, "Failed to load currency symbols")
		return
	}

	c.JSON(http.StatusOK, dto.SymbolListResponse{
		Freshness: h.exchangeRateService.Snapshot().Symbols.Freshness,
		Symbols:   rows,
	})
}

func (h *exchangeRateHandler) getHistoricalRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	raw := c.Param("date")
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("date", raw))
	rates, err := h.exchangeRateService.LoadHistorical(c.Request.Context(), date)
	if err != nil {
		h.respondLoadError(c, logger, err, h.exchangeRateService.Snapshot().Historical, "Failed to load historical rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoricalRatesResponse(date, rates))
}

func (h *exchangeRateHandler) refreshRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.exchangeRateService.RefreshAll(c.Request.Context()); err != nil {
		h.respondLoadError(c, logger, err, h.exchangeRateService.Snapshot().Latest, "Failed to refresh rates")
		return
	}
	logger.Info("Exchange rates refreshed")
	c.JSON(http.StatusOK, h.exchangeRateService.Snapshot())
}

func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.ConvertQuery
	_ = c.ShouldBindQuery(&q)

	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount greater than 0"})
		return
	}

	result, err := h.exchangeRateService.Convert(q.From, q.To, amount)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		From:   q.From,
		To:     q.To,
		Amount: amount,
		Result: result,
	})
}

func (h *exchangeRateHandler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.exchangeRateService.Snapshot())
}

// respondLoadError reports upstream failures with the message the store
// recorded for the data class, such as "API Error: ..." or the network hint.
func (h *exchangeRateHandler) respondLoadError(c *gin.Context, logger *slog.Logger, err error, state domain.LoadState, fallback string) {
	if statusFor(err) != http.StatusBadGateway {
		respondError(c, logger, err, fallback)
		return
	}
	msg := state.Message
	if msg == "" {
		msg = fallback
	}
	logger.Error(fallback, slog.String("error", err.Error()))
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/models"
	"github.com/SergeiKhy/influencer-roi/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type TopInfluencersResponse struct {
	Count       int                     `json:"count"`
	Influencers []models.InfluencerRank `json:"influencers"`
}

type PayoutsResponse struct {
	Count   int                `json:"count"`
	Payouts []models.PayoutRow `json:"payouts"`
}

// parseFilterQuery разбирает общие query-параметры выборки.
// Пустой селектор или значение "All" означает отсутствие ограничения.
func parseFilterQuery(c *gin.Context) (models.FilterQuery, error) {
	var q models.FilterQuery

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", raw)
		}
		q.Start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", raw)
		}
		q.End = t
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return q, fmt.Errorf("end date precedes start date")
	}

	q.Brand = selector(c, "brand")
	q.Platform = selector(c, "platform")
	q.Category = selector(c, "category")

	return q, nil
}

// selector преобразует API-сентинел "All" в отсутствующий фильтр
func selector(c *gin.Context, name string) *string {
	raw := c.Query(name)
	if raw == "" || raw == "All" {
		return nil
	}
	return &raw
}

// GetSummary godoc
// @Summary Campaign data summary
// @Description Table sizes and the full order date range of the loaded campaign snapshot
// @Tags analytics
// @Produce json
// @Success 200 {object} models.CampaignSummary
// @Router /api/v1/summary [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Summary())
}

// GetMetrics godoc
// @Summary Campaign KPI metrics
// @Description Aggregate revenue, payout, orders, ROAS and incremental ROAS for the filtered selection
// @Tags analytics
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string false "End date (YYYY-MM-DD, inclusive)"
// @Param brand query string false "Brand filter, 'All' for no restriction"
// @Param platform query string false "Platform filter"
// @Param category query string false "Influencer category filter"
// @Success 200 {object} models.CampaignMetrics
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/metrics [get]
func (h *AnalyticsHandler) GetMetrics(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	view := h.service.Filter(q)
	metrics := h.service.ComputeMetrics(c.Request.Context(), view)

	c.JSON(http.StatusOK, metrics)
}

// GetTopInfluencers godoc
// @Summary Top influencers by ROAS
// @Description Influencers ranked by revenue / payout, zero-payout influencers excluded
// @Tags analytics
// @Produce json
// @Param n query int false "Ranking size" default(5)
// @Success 200 {object} TopInfluencersResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/influencers/top [get]
func (h *AnalyticsHandler) GetTopInfluencers(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	n := 0
	if raw := c.Query("n"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_n",
				Message: "n must be an integer between 1 and 100",
			})
			return
		}
	}

	view := h.service.Filter(q)
	ranks := h.service.TopInfluencers(view, n)

	c.JSON(http.StatusOK, TopInfluencersResponse{
		Count:       len(ranks),
		Influencers: ranks,
	})
}

// GetInfluencerDetail godoc
// @Summary Influencer deep dive
// @Description Profile, filtered posts and orders, payout row and derived ROAS for one influencer
// @Tags analytics
// @Produce json
// @Param id path string true "Influencer ID"
// @Success 200 {object} models.InfluencerDetail
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/influencers/{id} [get]
func (h *AnalyticsHandler) GetInfluencerDetail(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	id := c.Param("id")
	view := h.service.Filter(q)

	detail, err := h.service.InfluencerDetail(view, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInfluencerNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Influencer not found for the current selection",
			})
		case errors.Is(err, service.ErrPayoutMissing):
			// Нарушение целостности данных, а не пустой результат
			h.logger.Error("Payout row missing", zap.String("influencer_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "data_integrity",
				Message: "Payout row missing for influencer",
			})
		default:
			h.logger.Error("Failed to build influencer detail", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to build influencer detail",
			})
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetInfluencerOrdersCSV godoc
// @Summary Download influencer orders as CSV
// @Tags analytics
// @Produce text/csv
// @Param id path string true "Influencer ID"
// @Success 200 {string} string "CSV file"
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/influencers/{id}/orders.csv [get]
func (h *AnalyticsHandler) GetInfluencerOrdersCSV(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	id := c.Param("id")
	view := h.service.Filter(q)

	detail, err := h.service.InfluencerDetail(view, id)
	if err != nil {
		h.logger.Warn("Failed to export orders", zap.String("influencer_id", id), zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Influencer not found for the current selection",
		})
		return
	}

	data, err := service.OrdersCSV(detail.Orders)
	if err != nil {
		h.logger.Error("Failed to serialize orders CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to serialize CSV",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_orders.csv", id))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetPayouts godoc
// @Summary Payout tracker
// @Description Payout rows for all influencers matching the current selection
// @Tags analytics
// @Produce json
// @Success 200 {object} PayoutsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/payouts [get]
func (h *AnalyticsHandler) GetPayouts(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	view := h.service.Filter(q)
	rows := h.service.PayoutRows(view)

	c.JSON(http.StatusOK, PayoutsResponse{
		Count:   len(rows),
		Payouts: rows,
	})
}

// GetPayoutsCSV godoc
// @Summary Download payout tracker as CSV
// @Tags analytics
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/payouts/export.csv [get]
func (h *AnalyticsHandler) GetPayoutsCSV(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
		return
	}

	view := h.service.Filter(q)
	rows := h.service.PayoutRows(view)

	data, err := service.PayoutsCSV(rows)
	if err != nil {
		h.logger.Error("Failed to serialize payouts CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to serialize CSV",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=payout_data.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// HealthCheck godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "influencer-roi",
	})
}

package handler

import (
	"github.com/SergeiKhy/influencer-roi/internal/middleware"
	"github.com/SergeiKhy/influencer-roi/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	analyticsService service.AnalyticsService,
	rateLimiter *middleware.RateLimiter,
	apiKeyMiddleware gin.HandlerFunc,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	if logger == nil {
		logger = zap.NewNop()
	}

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Rate limiting для всех запросов
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	// Инициализация обработчика аналитики
	analyticsHandler := NewAnalyticsHandler(analyticsService, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		// Применяем API Key middleware только к защищенным эндпоинтам
		if apiKeyMiddleware != nil {
			v1.Use(apiKeyMiddleware)
		}

		v1.GET("/summary", analyticsHandler.GetSummary)
		v1.GET("/metrics", analyticsHandler.GetMetrics)
		v1.GET("/influencers/top", analyticsHandler.GetTopInfluencers)
		v1.GET("/influencers/:id", analyticsHandler.GetInfluencerDetail)
		v1.GET("/influencers/:id/orders.csv", analyticsHandler.GetInfluencerOrdersCSV)
		v1.GET("/payouts", analyticsHandler.GetPayouts)
		v1.GET("/payouts/export.csv", analyticsHandler.GetPayoutsCSV)
	}

	// Swagger документация (без аутентификации)
	AddSwaggerRoutes(router)

	return router
}

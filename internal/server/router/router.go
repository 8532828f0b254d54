package router

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
// reports and webhook may be nil when their integrations are not configured.
func New(cfg config.ServerConfig, inv *handlers.InventoryHandler, reports *handlers.ReportHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", cfg.RateLimit, err)
	}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(rateLimitMiddleware(rateLimiter, logger))
	{
		api.GET("/settings", inv.Settings)
		api.POST("/transactions", inv.CreateTransaction)
		api.GET("/transactions", inv.ListTransactions)
		api.GET("/transactions/:id/balance", inv.RunningBalance)
		api.GET("/items", inv.Items)
		api.GET("/stock", inv.Stock)
		api.GET("/stock/:item", inv.ItemStock)
		api.GET("/export", inv.Export)
		api.POST("/import", inv.Import)
	}

	if reports != nil {
		api.GET("/reports/latest", reports.Latest)
	}

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		api.POST("/send-message", webhook.SendMessage)
	}

	logger.Info("router initialized", zap.Bool("whatsapp_webhook", webhook != nil))
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddExposeHeaders("Content-Disposition", requestIDHeader)
	return cfg
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header(requestIDHeader, requestID)

		c.Next()

		logger.Info("request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func rateLimitMiddleware(l *limiter.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		lctx, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("rate limit lookup failed", zap.String("ip", ip), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if lctx.Reached {
			logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.Int64("limit", lctx.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}

		c.Next()
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/service/reporting"
)

// ReportService reads archived stock reports.
type ReportService interface {
	LatestReport(ctx context.Context) (models.StockReport, error)
}

// ReportHandler exposes the daily report archive.
type ReportHandler struct {
	svc    ReportService
	logger *zap.Logger
}

func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Latest returns the last report written by the daily job.
func (h *ReportHandler) Latest(c *gin.Context) {
	report, err := h.svc.LatestReport(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, reporting.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive is not configured"})
	case errors.Is(err, reporting.ErrNoReport):
		c.JSON(http.StatusNotFound, gin.H{"error": "no report archived yet"})
	default:
		h.logger.Error("failed to load latest report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
	}
}

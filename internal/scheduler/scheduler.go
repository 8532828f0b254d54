package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/service/reporting"
)

// ReportPublisher builds and publishes the stock report.
type ReportPublisher interface {
	Publish(ctx context.Context) (models.StockReport, error)
}

// Notifier delivers outbound chat messages.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	reporting ReportPublisher
	notifier  Notifier
	cfg       config.Config
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil.
func NewScheduler(cfg config.Config, reportingSvc ReportPublisher, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, fmt.Errorf("load report timezone: %w", err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reporting: reportingSvc,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the daily report and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.dailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.Reporting.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule), zap.String("timezone", s.cfg.Reporting.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) dailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunDailyReport publishes the stock report and alerts on negative balances.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	s.logger.Info("generating daily stock report")

	report, err := s.reporting.Publish(ctx)
	if err != nil {
		s.logger.Warn("stock report published with errors", zap.Error(err))
	}

	alert := reporting.FormatAlert(report)
	if alert == "" || s.notifier == nil || s.cfg.WhatsApp.AlertRecipient == "" {
		return err
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.AlertRecipient,
		Message: alert,
	}
	if sendErr := s.notifier.SendOutbound(ctx, req); sendErr != nil {
		return fmt.Errorf("send negative stock alert: %w", sendErr)
	}

	s.logger.Info("negative stock alert sent", zap.Int("items", len(report.NegativeItems)))
	return err
}

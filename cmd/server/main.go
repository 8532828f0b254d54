package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/config"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/repository/mongodb"
	"github.com/mamadbah2/kain/internal/repository/sheets"
	"github.com/mamadbah2/kain/internal/scheduler"
	"github.com/mamadbah2/kain/internal/server/handlers"
	"github.com/mamadbah2/kain/internal/server/router"
	commandsvc "github.com/mamadbah2/kain/internal/service/commands"
	inventorysvc "github.com/mamadbah2/kain/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/kain/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/kain/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/kain/pkg/clients/whatsapp"
	"github.com/mamadbah2/kain/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	inventory := inventorysvc.NewService(ledger.New(), inventorysvc.Settings{
		BusinessName: cfg.Business.Name,
		Subtitle:     cfg.Business.Subtitle,
	}, logger.Named(baseLogger, "svc.inventory"))

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets credentials missing, report mirror disabled")
	}

	var archive mongodb.Repository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, report archive disabled")
	}

	reportingSvc := reportingsvc.NewService(inventory, sheetsRepo, archive, cfg.Business.Name, logger.Named(baseLogger, "svc.reporting"))
	commandDispatcher := commandsvc.NewService(inventory, cfg.Business.Name, logger.Named(baseLogger, "svc.commands"))

	var (
		webhookHandler *handlers.WebhookHandler
		notifier       scheduler.Notifier
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, command channel disabled")
	}

	inventoryHandler := handlers.NewInventoryHandler(inventory, logger.Named(baseLogger, "handlers.inventory"))
	reportHandler := handlers.NewReportHandler(reportingSvc, logger.Named(baseLogger, "handlers.reports"))
	engine, err := router.New(cfg.Server, inventoryHandler, reportHandler, webhookHandler, logger.Named(baseLogger, "router"))
	if err != nil {
		baseLogger.Fatal("failed to init router", zap.Error(err))
	}

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("business", cfg.Business.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/ozziework/contracts-backend-go/internal/config"
	appHTTP "github.com/ozziework/contracts-backend-go/internal/handler/http"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/pkg/cron"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
	"github.com/ozziework/contracts-backend-go/internal/pkg/jwt"
	"github.com/ozziework/contracts-backend-go/internal/pkg/sse"
	"github.com/ozziework/contracts-backend-go/internal/pkg/storage"
	"github.com/ozziework/contracts-backend-go/internal/repository/postgresql"
	"github.com/ozziework/contracts-backend-go/internal/service/file"
	notificationService "github.com/ozziework/contracts-backend-go/internal/service/notification"
	offerService "github.com/ozziework/contracts-backend-go/internal/service/offer"
	"github.com/ozziework/contracts-backend-go/internal/service/payroll"
	payslipService "github.com/ozziework/contracts-backend-go/internal/service/payslip"
	timesheetService "github.com/ozziework/contracts-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "contracts-backend"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	appRepo := postgresql.NewApplicationRepository(db)
	partyRepo := postgresql.NewPartyRepository(db)
	offerRepo := postgresql.NewOfferRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	txManager := postgresql.NewTxManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}
	fileService := file.NewFileService(fileStorage)

	hub := sse.NewHub()
	notifService := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{}, logger)
	defer notifService.Stop()

	locks := applock.NewRegistry()
	engine := payroll.NewEngine()

	offerSvc := offerService.NewOfferService(locks, txManager, appRepo, partyRepo, offerRepo, timesheetRepo, notifService)
	timesheetSvc := timesheetService.NewTimesheetService(locks, txManager, appRepo, offerRepo, timesheetRepo, notifService)
	payslipSvc := payslipService.NewPayslipService(
		locks, txManager, appRepo, partyRepo, offerRepo, timesheetRepo, payslipRepo,
		engine, fileService, notifService, cfg.Platform, cfg.Payroll, logger,
	)

	offerHandler := appHTTP.NewOfferHandler(offerSvc)
	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	payslipHandler := appHTTP.NewPayslipHandler(payslipSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notifService, jwtService)

	scheduler := cron.NewScheduler(logger)
	scheduler.AddJob("payslip-reconcile", 5*time.Minute, payslipSvc.ReconcileStale)
	scheduler.AddJob("payslip-overdue-monitor", time.Hour, payslipSvc.MonitorOverdue)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		logger,
		cfg.App.FrontendURL,
		jwtService,
		offerHandler,
		timesheetHandler,
		payslipHandler,
		notificationHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

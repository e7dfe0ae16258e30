package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/config"
	"github.com/mmcl/printrun/internal/database"
	"github.com/mmcl/printrun/internal/masterdata"
	"github.com/mmcl/printrun/internal/repository/mongodb"
	"github.com/mmcl/printrun/internal/repository/records"
	"github.com/mmcl/printrun/internal/repository/sheets"
	"github.com/mmcl/printrun/internal/repository/tokens"
	"github.com/mmcl/printrun/internal/scheduler"
	"github.com/mmcl/printrun/internal/server/handlers"
	"github.com/mmcl/printrun/internal/server/router"
	authsvc "github.com/mmcl/printrun/internal/service/auth"
	productionsvc "github.com/mmcl/printrun/internal/service/production"
	reportingsvc "github.com/mmcl/printrun/internal/service/reporting"
	"github.com/mmcl/printrun/pkg/clients/mlservice"
	"github.com/mmcl/printrun/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.ForEnv(cfg.Server.Env))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	catalog, err := masterdata.Load(cfg.MasterData.File)
	if err != nil {
		baseLogger.Fatal("failed to load master data", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, baseLogger.Named("database"))
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			baseLogger.Error("failed to close database pool", zap.Error(err))
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	var denylist tokens.Denylist = tokens.NewMemoryDenylist()
	if cfg.Redis.Addr != "" {
		redisDenylist, err := tokens.NewRedisDenylist(startupCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			baseLogger.Fatal("failed to init redis token denylist", zap.Error(err))
		}
		defer func() { _ = redisDenylist.Close() }()
		denylist = redisDenylist
		baseLogger.Info("redis token denylist enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var reportStore mongodb.Repository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportStore = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, daily reports will not be stored")
	}

	var reportSheet sheets.ReportSheet
	if cfg.Sheets.Enabled() {
		sheet, err := sheets.NewGoogleReportSheet(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportSheet = sheet
	}

	var mlClient mlservice.Client
	var batchAnalyzer scheduler.BatchAnalyzer
	if cfg.ML.BaseURL != "" {
		client := mlservice.NewClient(cfg.ML.BaseURL, cfg.ML.Timeout)
		mlClient, batchAnalyzer = client, client
		baseLogger.Info("ml service client enabled", zap.String("base_url", cfg.ML.BaseURL))
	} else {
		baseLogger.Warn("ML_SERVICE_URL missing, ai routes will answer 503")
	}

	recordRepo := records.NewGormRepository(db, baseLogger.Named("repo.records"))
	productionSvc := productionsvc.NewService(recordRepo, catalog, baseLogger.Named("svc.production"))
	authService := authsvc.NewService(catalog, denylist, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))
	reportingSvc := reportingsvc.NewService(recordRepo, reportStore, reportSheet, baseLogger.Named("svc.reporting"))

	mode := gin.ReleaseMode
	if cfg.Server.Env == "development" {
		mode = gin.DebugMode
	}
	engine := router.New(router.Handlers{
		Auth:       handlers.NewAuthHandler(authService, catalog, baseLogger.Named("handlers.auth")),
		Master:     handlers.NewMasterHandler(catalog),
		Production: handlers.NewProductionHandler(productionSvc, catalog, baseLogger.Named("handlers.production")),
		Analytics:  handlers.NewAnalyticsHandler(productionSvc, catalog),
		AI:         handlers.NewAIHandler(mlClient, baseLogger.Named("handlers.ai")),
		Export:     handlers.NewExportHandler(productionSvc, catalog, baseLogger.Named("handlers.export")),
		Reports:    handlers.NewReportHandler(reportingSvc),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, baseLogger.Named("handlers.health")),
	}, authService, router.Options{Mode: mode, AllowedOrigins: cfg.Server.AllowedOrigins}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, batchAnalyzer, baseLogger.Named("scheduler"))
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
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
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

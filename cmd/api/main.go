package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	appHTTP "github.com/cmlabs-hris/pph21-engine/internal/handler/http"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/database"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/pph21-engine/internal/repository/file"
	"github.com/cmlabs-hris/pph21-engine/internal/repository/postgresql"
	taxService "github.com/cmlabs-hris/pph21-engine/internal/service/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolConfig())
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	profileRepo := postgresql.NewTaxpayerProfileRepository(db)
	ytdRepo := postgresql.NewYTDRepository(db)

	var settingsRepo tax.SettingsRepository
	var settingsFile *file.SettingsRepository
	switch cfg.Tax.SettingsSource {
	case config.SettingsSourceFile:
		settingsFile, err = file.NewSettingsRepository(cfg.Tax.SettingsFile)
		if err != nil {
			logger.Error("Failed to load tax settings file", "error", err)
			os.Exit(1)
		}
		settingsRepo = settingsFile
	default:
		settingsRepo = postgresql.NewTaxSettingsRepository(db)
	}

	store := taxService.NewCacheStore(cfg.Tax)
	taxSvc := taxService.NewTaxService(settingsRepo, profileRepo, ytdRepo, store, cfg.Tax, logger)

	if settingsFile != nil {
		settingsFile.Watch(func() {
			taxSvc.ClearCache(context.Background(), "settings")
		})
	}

	scheduler := cron.NewScheduler(logger)
	cron.NewTaxJobs(taxSvc).RegisterJobs(scheduler, cfg.Tax.CacheWarmInterval)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authHandler := appHTTP.NewAuthHandler(JWTService)
	taxHandler := appHTTP.NewTaxHandler(taxSvc)

	router := appHTTP.NewRouter(cfg.HTTP, logger, JWTService, authHandler, taxHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("Server running", "addr", server.Addr, "settings_source", cfg.Tax.SettingsSource)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

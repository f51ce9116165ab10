package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/cli"
	"expensetracker/internal/core"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/services"
)

func main() {
	cfg, logger := cli.MustBootstrap(applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	accountCache := cache.NewLRUCache[[]core.Account](16, cfg.AccountCacheTTL)
	caches := cache.NewManager()
	caches.Register(accountCache)
	caches.StartCleanup(time.Minute)

	checks := make(map[string]apphttp.Pinger, len(res.Checks))
	for name, p := range res.Checks {
		checks[name] = p
	}

	rateCfg := ratelimit.DefaultConfig()
	rateCfg.RequestsPerMinute = cfg.RateLimit

	accounts := services.NewAccountService(res.Store, accountCache)
	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Budgets:        services.NewBudgetService(res.Store, res.Store, res.Store, res.Publisher),
		Accounts:       accounts,
		Records:        services.NewRecordService(accounts, res.Store),
		Goals:          services.NewGoalService(res.Store),
		Checks:         checks,
		CacheStats:     accountCache.Stats,
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      rateCfg,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting expensetracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Publisher != nil,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/recurring"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if n, err := repo.SeedDefaultCategories(context.Background()); err != nil {
		logger.Error("Failed to seed default categories", log.FieldError, err)
		os.Exit(1)
	} else if n > 0 {
		logger.Info("Seeded default categories", log.FieldCount, n)
	}

	amqpClient, publisher := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	reportCache := cache.NewLRUCache[any](256, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(time.Minute)

	loc := cfg.Location()
	reports := services.NewReportService(repo, reportCache, loc)
	processor := services.NewRecurringProcessor(repo, recurring.NewEngine(cfg.RecurringMaxOccurrences), publisher, reports)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:           repo,
		Accounts:        services.NewAccountService(repo),
		Transactions:    services.NewTransactionService(repo, publisher),
		Budgets:         services.NewBudgetService(repo),
		Recurring:       services.NewRecurringService(repo),
		Processor:       processor,
		Reports:         reports,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
		RateLimit:       ratelimit.DefaultConfig(),
	})
	recurringWorker := worker.NewRecurringWorker(processor, cfg.RecurringInterval, logger, reports.Now)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"timezone", loc.String(),
			"amqp", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return recurringWorker.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

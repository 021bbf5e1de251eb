package main

import (
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/recurring"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Generated transactions are announced so budget-worker can react to them.
	amqpClient, publisher := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	loc := cfg.Location()
	processor := services.NewRecurringProcessor(repo, recurring.NewEngine(cfg.RecurringMaxOccurrences), publisher, nil)

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"max_occurrences", cfg.RecurringMaxOccurrences,
		"timezone", loc.String(),
		"sqlite_db", cfg.SQLiteDBPath)

	w := worker.NewRecurringWorker(processor, cfg.RecurringInterval, logger, func() time.Time {
		return time.Now().In(loc)
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := w.Run(ctx); err != nil {
		logger.Error("Recurring worker failed", log.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}

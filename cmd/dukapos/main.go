package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dukapos/dukapos/internal/app"
	"github.com/dukapos/dukapos/internal/cashiers"
	"github.com/dukapos/dukapos/internal/catalog"
	"github.com/dukapos/dukapos/internal/credits"
	"github.com/dukapos/dukapos/internal/expenses"
	"github.com/dukapos/dukapos/internal/observability"
	"github.com/dukapos/dukapos/internal/platform/cache"
	"github.com/dukapos/dukapos/internal/platform/db"
	"github.com/dukapos/dukapos/internal/receipts"
	"github.com/dukapos/dukapos/internal/reports"
	"github.com/dukapos/dukapos/internal/sales"
	"github.com/dukapos/dukapos/internal/shared"
	"github.com/dukapos/dukapos/internal/shops"
	"github.com/dukapos/dukapos/jobs"
)

// receiptMailer adapts the asynq jobs client to the receipts handler.
type receiptMailer struct {
	client *jobs.Client
}

func (m receiptMailer) SendReceipt(ctx context.Context, to, transactionNumber, body string) error {
	_, err := m.client.EnqueueReceiptEmail(ctx, jobs.ReceiptEmailPayload{
		To:                to,
		TransactionNumber: transactionNumber,
		Body:              body,
	})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Reports fall back to uncached reads; the core flow does not need redis.
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	audit := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, audit)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, audit, idempotency, sales.ServiceConfig{
		SaleTimeout: cfg.SaleTimeout,
	})
	salesHandler := sales.NewHandler(logger, salesService, metrics)

	shopsService := shops.NewService(shops.NewRepository(pool))
	shopsHandler := shops.NewHandler(logger, shopsService)

	cashiersService := cashiers.NewService(cashiers.NewRepository(pool))
	cashiersHandler := cashiers.NewHandler(logger, cashiersService)

	expensesService := expenses.NewService(expenses.NewRepository(pool))
	expensesHandler := expenses.NewHandler(logger, expensesService)

	creditsService := credits.NewService(credits.NewRepository(pool), salesRepo)
	creditsHandler := credits.NewHandler(logger, creditsService)

	reportsService := reports.NewService(reports.NewRepository(pool), redisClient, cfg.ReportCacheTTL, logger)
	reportsHandler := reports.NewHandler(reportsService, logger)

	var mailer receipts.Mailer
	if redisClient != nil {
		jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		mailer = receiptMailer{client: jobsClient}
	}
	receiptsHandler := receipts.NewHandler(salesService, receipts.NewRenderer("Thank you, karibu tena!"), mailer, logger)

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		Metrics:         metrics,
		Pool:            pool,
		CatalogHandler:  catalogHandler,
		SalesHandler:    salesHandler,
		ShopsHandler:    shopsHandler,
		CashiersHandler: cashiersHandler,
		ExpensesHandler: expensesHandler,
		CreditsHandler:  creditsHandler,
		ReportsHandler:  reportsHandler,
		ReceiptsHandler: receiptsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.AppAddr, "env", cfg.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

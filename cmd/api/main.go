package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tallyhq/tally-backend/internal/allocation"
	"github.com/tallyhq/tally-backend/internal/config"
	"github.com/tallyhq/tally-backend/internal/handler"
	"github.com/tallyhq/tally-backend/internal/logging"
	"github.com/tallyhq/tally-backend/internal/middleware"
	"github.com/tallyhq/tally-backend/internal/repository"
	"github.com/tallyhq/tally-backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("tally-api", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accounts := repository.NewAccountRepository(db)
	invoices := repository.NewInvoiceRepository(db)
	payments := repository.NewPaymentRepository(db)
	transactions := repository.NewTransactionRepository(db)
	entities := repository.NewEntityRepository(db)
	feeConfigs := repository.NewFeeConfigRepository(db)
	users := repository.NewUserRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	posting := service.NewPostingService(
		repository.NewDB(db), invoices, payments, accounts, transactions,
		service.DefaultPostingAccounts(),
	)
	allocations := service.NewAllocationService(invoices, allocation.NewSubmitter(posting))
	statements := service.NewStatementService(entities, invoices, payments)
	accounting := service.NewAccountingService(accounts)
	fees := service.NewFeeConfigService(feeConfigs)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, jwtExpiry)
	paymentHandler := handler.NewPaymentHandler(allocations)
	statementHandler := handler.NewStatementHandler(statements)
	accountHandler := handler.NewAccountHandler(accounting)
	feeHandler := handler.NewFeeConfigHandler(fees)
	healthHandler := handler.NewHealthHandler(db)

	authMW := middleware.Auth(cfg.JWTSecret)
	idemMW := middleware.Idempotency(idempotency)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/me", authMW(http.HandlerFunc(authHandler.Me)))

	mux.Handle("GET /api/v1/invoices/payable", authMW(http.HandlerFunc(paymentHandler.ListPayable)))
	mux.Handle("POST /api/v1/payments/allocate", authMW(idemMW(http.HandlerFunc(paymentHandler.Allocate))))
	mux.Handle("GET /api/v1/accounts", authMW(http.HandlerFunc(accountHandler.List)))
	mux.Handle("POST /api/v1/accounts", authMW(http.HandlerFunc(accountHandler.Create)))
	mux.Handle("GET /api/v1/accounts/{id}/ledger", authMW(http.HandlerFunc(accountHandler.GetLedger)))
	mux.Handle("GET /api/v1/entities/{id}/statement", authMW(http.HandlerFunc(statementHandler.Get)))
	mux.Handle("GET /api/v1/entities/{id}/balance", authMW(http.HandlerFunc(statementHandler.GetBalance)))
	mux.Handle("GET /api/v1/fee-configs/{kind}", authMW(http.HandlerFunc(feeHandler.Get)))
	mux.Handle("PUT /api/v1/fee-configs/{kind}", authMW(http.HandlerFunc(feeHandler.Update)))
	mux.Handle("GET /api/v1/fee-configs/{kind}/quote", authMW(http.HandlerFunc(feeHandler.Quote)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

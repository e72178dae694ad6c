package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"buste/internal/config"
	"buste/internal/core"
	apphttp "buste/internal/http"
	"buste/internal/ledger"
	"buste/internal/ledger/memory"
	"buste/internal/ledger/sqlite"
	applog "buste/internal/log"
	"buste/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	var store ledger.Ledger
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite ledger", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
		logger.Info("Initialized sqlite ledger", "path", cfg.SQLiteDBPath)
	default:
		store = seedMemoryLedger()
		logger.Info("Initialized memory ledger")
	}

	svc := services.NewBudgetService(store)
	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)

	srv.ReadTimeout = cfg.RequestTimeout
	srv.WriteTimeout = cfg.RequestTimeout
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting buste server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// seedMemoryLedger builds a small demo workspace so the memory backend
// answers something useful out of the box.
func seedMemoryLedger() *memory.Store {
	store := memory.New()

	monthly := core.PeriodConfig{Mode: core.PeriodModeMonthly, AnchorDay: 1}
	store.PutBudget(core.Budget{ID: 1, WorkspaceID: 1, Name: "Household", Period: &monthly})
	store.LinkAccount(1, 1, decimal.NewFromInt(2500))

	store.PutCategory(1, core.Category{ID: 1, Name: "Salary", Income: true})
	store.PutCategory(1, core.Category{ID: 2, Name: "Groceries"})
	store.PutCategory(1, core.Category{ID: 3, Name: "Rent"})
	store.PutPolicy(1, 2, core.RolloverSameCategory)

	store.PutRecurringItem(1, core.RecurringItem{
		ID:         1,
		Name:       "Internet",
		CategoryID: 3,
		AccountID:  1,
		Status:     core.StatusActive,
		Every:      core.Monthly,
		Quantity:   1,
		Anchors:    []core.Date{core.NewDate(2026, 1, 5)},
		StartDate:  core.NewDate(2026, 1, 5),
		Amount:     decimal.NewFromInt(30),
	})

	return store
}

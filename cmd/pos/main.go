package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/config"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/gateway"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/gateway/rest"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/netmon"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/storage"

	orderRepoPkg "github.com/fahimhasan4438765/techzu-pos-system/internal/order/repository"
	prodRepoPkg "github.com/fahimhasan4438765/techzu-pos-system/internal/product/repository"
	queueRepoPkg "github.com/fahimhasan4438765/techzu-pos-system/internal/syncqueue/repository"
	syncUCPkg "github.com/fahimhasan4438765/techzu-pos-system/internal/syncer/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger, err := newLogger(&cfg.Logger, cfg.App.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open local database
	db, err := storage.Open(ctx, &storage.Config{Path: cfg.SQLite.Path})
	if err != nil {
		appLogger.Fatal("Could not open local database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Local database ready", zap.String("path", cfg.SQLite.Path))

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewSQLiteRepository(db)
	orderRepo := orderRepoPkg.NewSQLiteRepository(db)
	queueRepo := queueRepoPkg.NewSQLiteRepository(db)

	if cfg.SQLite.SeedDev {
		if err := seedCatalog(ctx, prodRepo); err != nil {
			appLogger.Warn("Failed to seed development catalog", zap.Error(err))
		}
	}

	// 5. Initialize Gateway and connectivity monitor
	tokens := gateway.NewStaticTokenSource(cfg.API.Token)
	gw := rest.NewClient(&cfg.API, tokens, appLogger)
	monitor := netmon.NewMonitor(gw, cfg.Sync.ProbeInterval, appLogger)
	go monitor.Start(ctx)

	// 6. Initialize Sync Engine
	engine := syncUCPkg.NewSyncUseCase(prodRepo, orderRepo, queueRepo, gw, monitor, cfg, appLogger)

	engine.Subscribe(func(status model.SyncStatus) {
		appLogger.Debug("Sync status",
			zap.Bool("online", status.Online),
			zap.Bool("syncing", status.Syncing),
			zap.Int64("pending", status.PendingCount),
		)
	})

	go engine.Start(ctx)
	appLogger.Info("POS sync agent started", zap.String("device_id", cfg.App.DeviceID))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	appLogger.Info("Stopped")
}

func newLogger(cfg *config.LoggerConfig, appEnv string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "json"
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if appEnv == "dev" || appEnv == "development" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Encoding = cfg.Encoding
	}

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	zapCfg.DisableCaller = cfg.DisableCaller
	zapCfg.DisableStacktrace = cfg.DisableStacktrace

	return zapCfg.Build()
}

func seedCatalog(ctx context.Context, repo *prodRepoPkg.SQLiteRepository) error {
	count, err := repo.Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	str := func(s string) *string { return &s }
	now := time.Now().UTC()
	return repo.ReplaceCatalog(ctx, []model.Product{
		{ID: "1", Name: "Coffee - Espresso", PriceCents: 350, Stock: 100, TaxRate: 8.25, Category: str("Beverages"), Barcode: str("1234567890123"), LastUpdated: now},
		{ID: "2", Name: "Croissant - Plain", PriceCents: 225, Stock: 50, TaxRate: 8.25, Category: str("Pastries"), Barcode: str("1234567890124"), LastUpdated: now},
		{ID: "3", Name: "Sandwich - Ham & Cheese", PriceCents: 875, Stock: 25, TaxRate: 8.25, Category: str("Food"), Barcode: str("1234567890125"), LastUpdated: now},
		{ID: "4", Name: "Water Bottle", PriceCents: 150, Stock: 200, TaxRate: 0, Category: str("Beverages"), Barcode: str("1234567890126"), LastUpdated: now},
		{ID: "5", Name: "Muffin - Blueberry", PriceCents: 325, Stock: 30, TaxRate: 8.25, Category: str("Pastries"), Barcode: str("1234567890127"), LastUpdated: now},
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/PxPatel/matching-core/config"
	"github.com/PxPatel/matching-core/internal/logger"
	"github.com/PxPatel/matching-core/internal/matching"
	"github.com/PxPatel/matching-core/internal/metrics"
	"github.com/PxPatel/matching-core/internal/storage"
	"github.com/PxPatel/matching-core/internal/storage/file"
	"github.com/PxPatel/matching-core/internal/storage/memory"
	"github.com/PxPatel/matching-core/internal/storage/postgres"
	"github.com/PxPatel/matching-core/internal/storage/redis"
	"github.com/PxPatel/matching-core/internal/types"
)

// replay feeds a JSON-lines file of order events through one order book and
// prints the resulting trades and depth.
//
//	replay [input.jsonl | -]
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Validated by config.Load
	logLevel, _ := logger.ParseLevel(cfg.Logger.Level)
	logger.SetMinLevel(logLevel)
	defer logger.Sync()

	inputPath := cfg.Replay.InputPath
	if len(os.Args) > 1 {
		inputPath = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, inputPath, os.Stdout); err != nil {
		logger.Error("Replay failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, inputPath string, out io.Writer) error {
	input, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer input.Close()

	tradeStore := buildStorageLayers(cfg)
	defer func() {
		if err := tradeStore.Close(); err != nil {
			logger.Error("Failed to close trade stores", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Continue numbering after trades published by earlier runs
	lastSeq, err := storage.LastSeq(tradeStore)
	if err != nil {
		return fmt.Errorf("failed to resume trade sequence: %w", err)
	}

	m := metrics.New(cfg.Metrics.Namespace)
	registry := prometheus.NewRegistry()
	m.MustRegister(registry)

	engine := matching.NewEngine(
		matching.WithArenaCapacity(cfg.Engine.ArenaCapacity),
		matching.WithTradeLogCapacity(cfg.Engine.TradeLogCapacity),
		matching.WithTradeSeqStart(lastSeq),
		matching.WithEventHandler(logOrderEvent),
	)
	runner := matching.NewRunner(engine, matching.RunnerConfig{
		QueueSize: cfg.Engine.QueueSize,
		Store:     tradeStore,
		Metrics:   m,
	})

	logger.Info("Starting order replay", map[string]interface{}{
		"symbol":      cfg.Book.Symbol,
		"input":       inputPath,
		"price_scale": cfg.Book.PriceScale,
		"last_seq":    lastSeq,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		defer runner.Close()
		scale := int32(cfg.Book.PriceScale)
		n, err := readOrders(input, scale, func(order types.Order) error {
			submitCtx, cancel := context.WithTimeout(gctx, cfg.Engine.SubmitTimeout)
			defer cancel()
			return runner.Submit(submitCtx, order)
		})
		logger.Info("Order input consumed", map[string]interface{}{
			"orders": n,
		})
		return err
	})

	var server *http.Server
	if cfg.Metrics.Addr != "" {
		server = startMetricsServer(cfg.Metrics.Addr, registry)
	}

	runErr := g.Wait()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server forced to shutdown", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if runErr != nil {
		return runErr
	}

	// The runner has stopped; the engine is safe to read
	printTrades(out, engine.Trades().All(), int32(cfg.Book.PriceScale))
	printDepth(out, engine.Book(), cfg.Replay.DepthLevels, int32(cfg.Book.PriceScale))

	logger.Info("Replay complete", map[string]interface{}{
		"trades":         engine.Trades().Len(),
		"resting_orders": engine.Book().RestingCount(),
	})
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

func logOrderEvent(ev matching.OrderEvent) {
	logger.Debug("Order status changed", map[string]interface{}{
		"order_id":  ev.OrderID,
		"side":      ev.Side.String(),
		"price":     ev.Price,
		"remaining": ev.Remaining,
		"status":    ev.Status.String(),
	})
}

func startMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server starting", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
	return server
}

// buildStorageLayers constructs the trade publishers based on configuration.
// Returns a composite store that layers memory, Redis, Postgres and the file log.
func buildStorageLayers(cfg *config.Config) storage.TradeStore {
	var tradeStores []storage.TradeStore

	// L1: In-memory (fastest) - if enabled
	if cfg.Memory.Enabled {
		tradeStores = append(tradeStores, memory.NewInMemoryTradeStore(cfg.Memory.MaxTrades))
		logger.Info("In-memory storage layer enabled", map[string]interface{}{
			"max_trades": cfg.Memory.MaxTrades,
		})
	}

	// L2: Redis (distributed cache) - if enabled
	if cfg.Redis.Enabled {
		redisTradeStore, err := redis.NewRedisTradeStore(redis.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			MaxTrades:    cfg.Redis.MaxTrades,
			Symbol:       cfg.Book.Symbol,
		})
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without distributed cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("Redis cache connected successfully", map[string]interface{}{
				"host": cfg.Redis.Host,
				"port": cfg.Redis.Port,
			})
			tradeStores = append(tradeStores, redisTradeStore)
		}
	}

	// L3: PostgreSQL (persistent storage) - if enabled
	if cfg.Database.Enabled {
		pgTradeStore, err := postgres.NewPostgresTradeStore(postgres.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
			Symbol:          cfg.Book.Symbol,
		})
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without persistent storage", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("PostgreSQL connected successfully", map[string]interface{}{
				"host":     cfg.Database.Host,
				"database": cfg.Database.Name,
			})
			tradeStores = append(tradeStores, pgTradeStore)
		}
	}

	// L4: File storage (audit log)
	if fileTradeStore, err := file.NewFileTradeStore(cfg.Engine.TradeLogPath); err == nil {
		tradeStores = append(tradeStores, fileTradeStore)
		logger.Info("Trade file log enabled", map[string]interface{}{
			"path": cfg.Engine.TradeLogPath,
		})
	} else {
		logger.Warn("Trade file log disabled", map[string]interface{}{
			"path":  cfg.Engine.TradeLogPath,
			"error": err.Error(),
		})
	}

	logger.Info("Storage layers initialized", map[string]interface{}{
		"trade_layers": len(tradeStores),
	})

	if len(tradeStores) == 1 {
		return tradeStores[0]
	}
	return storage.NewCompositeTradeStore(tradeStores...)
}

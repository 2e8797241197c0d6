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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"order-taking-system/activities"
	"order-taking-system/catalog"
	"order-taking-system/config"
	"order-taking-system/letter"
	"order-taking-system/logging"
	"order-taking-system/messaging"
	"order-taking-system/messaging/noop"
	"order-taking-system/metrics"
	"order-taking-system/temporalclient"
	"order-taking-system/workflows"
)

// WorkerVersion is reported at startup.
const WorkerVersion = "2.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, level, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher messaging.Publisher = noop.Publisher{}
	if cfg.KafkaEnabled() {
		publisher = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic, cfg.NotificationsTopic)
		logger.Info("Kafka publisher enabled", "brokers", cfg.KafkaBrokers, "events_topic", cfg.EventsTopic)
	} else {
		logger.Warn("KAFKA_BROKERS not set; events and acknowledgments are discarded")
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(reg)

	c, err := temporalclient.Dial(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	// Setting BuildID enables worker versioning; it requires server-side
	// task queue configuration.
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		BuildID:                                cfg.BuildID,
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	w.RegisterWorkflow(workflows.PlaceOrderWorkflow)
	w.RegisterWorkflow(workflows.BillingWorkflow)

	orderActivities := activities.NewActivities(
		cfg.AddressServiceURL,
		store,
		publisher,
		letter.NewRenderer(cfg.LetterSignature),
		pipelineMetrics,
	)
	w.RegisterActivity(orderActivities)
	w.RegisterActivity(activities.NewBillingActivities(publisher, pipelineMetrics))

	logger.Info("Starting Temporal worker",
		"version", WorkerVersion,
		"build_id", cfg.BuildID,
		"temporal_address", cfg.TemporalAddress,
		"task_queue", cfg.TaskQueue,
		"address_service_url", cfg.AddressServiceURL,
		"catalog_driver", catalog.DriverName,
		"catalog_build", catalog.BuildMode,
	)

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Start(); err != nil {
			return fmt.Errorf("unable to start worker: %w", err)
		}
		<-gctx.Done()
		w.Stop()
		return nil
	})
	g.Go(func() error {
		logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("Worker stopped")
	return err
}

// openCatalog opens the SQLite catalog, seeds an empty one, and puts the
// Redis price cache in front when configured.
func openCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger) (catalog.Store, error) {
	db, err := catalog.NewSQLiteStore(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}

	n, err := db.CountProducts(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if n == 0 {
		if err := catalog.Seed(ctx, db, catalog.DefaultProducts()); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Seeded empty catalog", "path", cfg.CatalogDBPath)
	}

	if cfg.RedisAddr == "" {
		return db, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable; prices will be read from SQLite until it recovers", "addr", cfg.RedisAddr, "error", err)
	}
	logger.Info("Price cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.PriceCacheTTL)
	return &closingStore{CachedStore: catalog.NewCachedStore(db, rdb, cfg.PriceCacheTTL), rdb: rdb}, nil
}

// closingStore also closes the Redis client it owns.
type closingStore struct {
	*catalog.CachedStore
	rdb *redis.Client
}

func (s *closingStore) Close() error {
	return errors.Join(s.CachedStore.Close(), s.rdb.Close())
}

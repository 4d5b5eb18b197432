package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	appOrder "github.com/bylucie/storefront/internal/application/order"
	dominv "github.com/bylucie/storefront/internal/domain/inventory"
	"github.com/bylucie/storefront/internal/infrastructure/httptransport"
	"github.com/bylucie/storefront/internal/infrastructure/id"
	"github.com/bylucie/storefront/internal/infrastructure/memory"
	"github.com/bylucie/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/bylucie/storefront/internal/infrastructure/observability/prometrics"
	"github.com/bylucie/storefront/internal/infrastructure/observability/telemetry"
	"github.com/bylucie/storefront/internal/infrastructure/observability/zaplogger"
	"github.com/bylucie/storefront/internal/observability"
	"github.com/bylucie/storefront/internal/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "storefront-orders")
	env := getenvDefault("ENV", "dev")
	baseLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	registry := prometrics.New("storefront", "orders")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP request handling in seconds.",
			prometheus.DefBuckets,
			"method", "route", "status",
		),
	}
	tel := telemetry.New(
		oteltrace.New(serviceName),
		zaplogger.Wrap(baseLogger),
		counters,
		histograms,
	)

	orderRepo := memory.NewOrderRepository()
	inventoryRepo := memory.NewInventoryRepository()
	seedInventory(inventoryRepo, baseLogger)

	orderService := appOrder.NewService(orderRepo, inventoryRepo, id.NewUUIDGenerator())
	handler := httptransport.NewHandler(orderService)
	observe := httptransport.ObservabilityMiddleware(baseLogger, tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", observe(handler.Router()))

	server := &http.Server{
		Addr:    getenvDefault("ADDR", ":8080"),
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

// seedInventory loads the stock pool from STOCK_SEED, a comma-separated list
// of productId=quantity pairs, e.g. "p1=5,p2=12".
func seedInventory(repo *memory.InventoryRepository, logger *zap.Logger) {
	seed := os.Getenv("STOCK_SEED")
	if seed == "" {
		return
	}
	ctx := context.Background()
	for _, pair := range strings.Split(seed, ",") {
		productID, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			logger.Warn("stock_seed_skipped", zap.String("pair", pair))
			continue
		}
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("stock_seed_skipped", zap.String("pair", pair), zap.Error(err))
			continue
		}
		item, err := dominv.NewItem(productID, quantity)
		if err != nil {
			logger.Warn("stock_seed_skipped", zap.String("pair", pair), zap.Error(err))
			continue
		}
		if err := repo.Save(ctx, item); err != nil {
			logger.Warn("stock_seed_failed", zap.String("product_id", productID), zap.Error(err))
		}
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

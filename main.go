package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appInventory "github.com/Zhima-Mochi/stockroom/internal/application/inventory"
	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/audit"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/config"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/jsonfile"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/provider"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/stockroom/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "stockroom",
		Short:         "In-memory inventory tracker with JSON snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newReportCommand(),
		newAddCommand(),
		newRemoveCommand(),
		newLowCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap wires the service the same way for every command. Metrics are
// only registered for the long-running server; one-shot commands run with
// nop instruments.
func bootstrap(withMetrics bool) (*config.Config, *zap.Logger, *appInventory.Service, observability.Observability, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	baseLogger := logging.MustNewLogger(cfg.App.Name, cfg.App.Environment, cfg.Logger.Level)
	zap.ReplaceGlobals(baseLogger)

	logger := zaplogger.New(baseLogger)

	var counters map[observability.MetricKey]observability.Counter
	var histograms map[observability.MetricKey]observability.Histogram
	if withMetrics && cfg.Metrics.Enabled {
		registry := prometrics.New(cfg.App.Name, "")
		counters = map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests: registry.Counter(string(observability.MUsecaseRequests),
				"Total number of use case invocations.", "use_case", "outcome"),
			observability.MHTTPRequests: registry.Counter(string(observability.MHTTPRequests),
				"Total number of HTTP requests.", "method", "route", "status"),
			observability.MSnapshotIO: registry.Counter(string(observability.MSnapshotIO),
				"Total number of snapshot load/save operations.", "op", "outcome"),
		}
		histograms = map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: registry.Histogram(string(observability.MUsecaseDuration),
				"Duration of use case execution in seconds.", nil, "use_case"),
			observability.MHTTPRequestDuration: registry.Histogram(string(observability.MHTTPRequestDuration),
				"Duration of HTTP requests in seconds.", nil, "method", "route", "status"),
			observability.MSnapshotIODuration: registry.Histogram(string(observability.MSnapshotIODuration),
				"Duration of snapshot load/save operations in seconds.", nil, "op"),
		}
	}

	tel := provider.New(
		oteltrace.New(cfg.App.Name),
		logger,
		counters,
		histograms,
	)

	service := appInventory.NewService(
		jsonfile.NewStore(),
		audit.NewZapLog(logger),
		id.NewUUIDGenerator(),
		tel,
	)

	return cfg, baseLogger, service, tel, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the stockroom HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, baseLogger, service, tel, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := oteltrace.Setup(ctx, cfg.App.Name, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Seed in-memory state from the snapshot; a missing file starts empty.
	if err := service.LoadSnapshot(ctx, cfg.Inventory.SnapshotPath); err != nil {
		return err
	}

	handler := httppresentation.NewHandler(service, cfg.Inventory.SnapshotPath, cfg.Inventory.LowThreshold, tel.Logger(), tel)
	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

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
		return err
	}
	baseLogger.Info("http_server_stopped")
	return nil
}

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the current inventory report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseLogger, service, _, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer func() { _ = baseLogger.Sync() }()

			ctx := cmd.Context()
			if err := service.LoadSnapshot(ctx, cfg.Inventory.SnapshotPath); err != nil {
				return err
			}
			return service.Report(ctx, cmd.OutOrStdout())
		},
	}
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <item> <quantity>",
		Short: "Add stock for an item and persist the snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, args, func(ctx context.Context, service *appInventory.Service, item string, qty int) {
				service.AddItem(ctx, item, qty)
			})
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item> <quantity>",
		Short: "Remove stock for an item and persist the snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, args, func(ctx context.Context, service *appInventory.Service, item string, qty int) {
				service.RemoveItem(ctx, item, qty)
			})
		},
	}
}

func runMutation(cmd *cobra.Command, args []string, mutate func(context.Context, *appInventory.Service, string, int)) error {
	qty, err := domain.ParseQuantity(args[1])
	if err != nil {
		return err
	}

	cfg, baseLogger, service, _, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()

	ctx := cmd.Context()
	if err := service.LoadSnapshot(ctx, cfg.Inventory.SnapshotPath); err != nil {
		return err
	}
	mutate(ctx, service, args[0], qty)
	if err := service.SaveSnapshot(ctx, cfg.Inventory.SnapshotPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d\n", args[0], service.Quantity(ctx, args[0]))
	return nil
}

func newLowCommand() *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "low",
		Short: "List items whose stock is below the threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseLogger, service, _, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer func() { _ = baseLogger.Sync() }()

			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Inventory.LowThreshold
			}

			ctx := cmd.Context()
			if err := service.LoadSnapshot(ctx, cfg.Inventory.SnapshotPath); err != nil {
				return err
			}
			for _, name := range service.LowStock(ctx, threshold) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", domain.DefaultLowThreshold, "low stock threshold")
	return cmd
}

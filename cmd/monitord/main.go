// Command monitord runs the HTTP/WebSocket server, samples system metrics
// on a fixed interval, and serves a live dashboard over the same server,
// grounded on original_source/src/main.cpp's startup sequence: load
// configuration, build the logger, wire the metrics collector/storage/alert
// manager, register routes, start serving, wait for a shutdown signal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SarthakJain2/monitord/internal/config"
	"github.com/SarthakJain2/monitord/internal/dashboard"
	"github.com/SarthakJain2/monitord/internal/logging"
	"github.com/SarthakJain2/monitord/internal/metrics"
	"github.com/SarthakJain2/monitord/internal/server"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML/JSON/TOML config file (optional)")
	flag.Parse()

	loader := config.New(*configFile)
	settings, err := loader.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(&logging.Config{
		Level:  settings.LogLevel,
		Format: logging.Format(settings.LogFormat),
		Console: settings.LogFile == "",
		Rotate:  rotateConfig(settings.LogFile),
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	loader.Watch(func(fresh *config.Settings) {
		logger.Info("config reloaded", zap.String("listen_addr", fresh.ListenAddr))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector("/")
	ring := metrics.NewRing(settings.MetricsRingSize)
	alerts := metrics.NewAlertManager(metrics.Thresholds{
		CPUPercent:  settings.AlertCPUPercent,
		MemPercent:  settings.AlertMemPercent,
		DiskPercent: settings.AlertDiskPercent,
	})

	hub := dashboard.NewHub()
	alerts.SetCallback(func(a metrics.Alert) {
		logger.Warn("alert", zap.String("type", string(a.Type)), zap.Bool("active", a.Active),
			zap.Float64("value", a.CurrentValue), zap.Float64("threshold", a.Threshold))
	})

	srv := server.New(
		server.WithListenAddr(settings.ListenAddr),
		server.WithWorkerPoolSize(settings.WorkerPoolSize),
		server.WithReadBufferSize(settings.ReadBufferSize),
		server.WithShutdownTimeout(settings.ShutdownTimeout),
		server.WithLogger(logger),
	)

	srv.Get("/", dashboard.IndexHandler())
	srv.Get("/dashboard", dashboard.IndexHandler())
	srv.RegisterWebSocketHandler("/ws/metrics", dashboard.WSHandler(hub))

	if settings.StaticDir != "" {
		srv.ServeStatic("/static", settings.StaticDir)
	}

	go runSamplingLoop(ctx, settings.MetricsInterval, collector, ring, alerts, hub, logger)

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	logger.Info("monitord listening", zap.String("addr", settings.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server exited", zap.Error(err))
		}
	}

	cancel()
	srv.Stop()
	logger.Info("monitord stopped")
}

// runSamplingLoop ticks once per interval, storing each sample in ring and
// feeding it to the alert manager, then broadcasts to every subscribed
// dashboard connection. It stops when ctx is cancelled, the metrics
// goroutine's sole use of context for lifecycle rather than per-request
// cancellation.
func runSamplingLoop(ctx context.Context, interval time.Duration, collector *metrics.Collector, ring *metrics.Ring, alerts *metrics.AlertManager, hub *dashboard.Hub, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := collector.Collect()
			if err != nil {
				logger.Error("collect sample", zap.Error(err))
				continue
			}
			ring.Add(sample)
			alerts.Check(sample)

			if err := hub.Broadcast(sample, alerts.ActiveAlerts()); err != nil {
				logger.Error("broadcast sample", zap.Error(err))
			}
		}
	}
}

func rotateConfig(logFile string) *logging.Rotate {
	if logFile == "" {
		return nil
	}
	return &logging.Rotate{
		Filename:   logFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

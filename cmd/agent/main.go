package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/TraceForge/internal/api/http"
	"github.com/GriffinCanCode/TraceForge/internal/config"
	"github.com/GriffinCanCode/TraceForge/internal/export"
	"github.com/GriffinCanCode/TraceForge/internal/journal"
	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/monitoring"
	"github.com/GriffinCanCode/TraceForge/internal/server"
	"github.com/GriffinCanCode/TraceForge/internal/sink"
	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (environment variables used when empty)")
	replayPath := flag.String("replay", "", "assemble traces from a captured event journal and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}
	defer logger.Sync()

	metrics := monitoring.New(prometheus.DefaultRegisterer)
	syms := symbols.NewRegistry()

	shipper, err := newShipper(cfg)
	if err != nil {
		logger.Fatal("Failed to create shipper", zap.Error(err))
	}

	exporter := export.NewExporter(shipper, export.Options{
		AgentID:       cfg.Agent.Name,
		BatchSize:     cfg.Export.BatchSize,
		FlushInterval: cfg.Export.FlushInterval,
	}, logger, metrics)

	snk := sink.New(exporter, syms, sink.Options{
		QueueSize: cfg.Sink.QueueSize,
		Policy:    sink.Policy(cfg.Sink.Policy),
		RingSize:  cfg.Sink.RingSize,
		TapBuffer: cfg.Sink.TapBuffer,
	}, logger, metrics)

	limits := trace.Limits{
		MaxTraceRecords:  cfg.Limits.MaxTraceRecords,
		MinMethodTime:    cfg.Limits.MinMethodTimeNS,
		DefaultTraceTime: cfg.Limits.MinTraceTimeNS,
	}

	diag := logging.NewThrottled(logger.Logger, time.Second, 10)
	metrics.TrackProtocolErrors(func() float64 { return float64(diag.Count()) })

	if *replayPath != "" {
		if err := replay(*replayPath, snk, syms, limits, diag, logger); err != nil {
			logger.Error("Replay failed", zap.Error(err))
		}
		snk.Close()
		if err := exporter.Close(); err != nil {
			logger.Error("Exporter close failed", zap.Error(err))
		}
		return
	}

	handlers := apihttp.NewHandlers(cfg.Agent.Name, limits, snk, syms, metrics, logger)
	srv := server.New(cfg.Server, handlers, logger, cfg.Logging.Development)

	logger.Info("TraceForge agent starting",
		zap.String("agent", cfg.Agent.Name),
		zap.String("addr", cfg.Server.Host+":"+cfg.Server.Port),
		zap.String("export_mode", cfg.Export.Mode),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutting down gracefully")
	case err := <-errChan:
		logger.Error("Admin server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Admin server shutdown failed", zap.Error(err))
	}

	snk.Close()
	if err := exporter.Close(); err != nil {
		logger.Error("Exporter close failed", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newShipper(cfg *config.Config) (export.Shipper, error) {
	switch cfg.Export.Mode {
	case "http":
		return export.NewHTTPShipper(export.HTTPOptions{
			Endpoint:   cfg.Export.Endpoint,
			Compress:   cfg.Export.Compress,
			RetryCount: cfg.Export.RetryCount,
		}), nil
	default:
		return export.NewFileShipper(cfg.Export.Path, cfg.Export.Compress)
	}
}

func replay(path string, snk trace.Sink, syms *symbols.Registry, limits trace.Limits, diag *logging.Throttled, logger *logging.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader, err := journal.NewReader(file)
	if err != nil {
		return err
	}

	builder := trace.NewBuilder(snk, limits, diag)
	events, err := reader.Replay(journal.WithSymbols(builder, syms))
	if err != nil {
		return err
	}

	logger.Info("Journal replayed",
		zap.String("journal_agent", reader.AgentID()),
		zap.Int("events", events),
		zap.Int64("protocol_errors", diag.Count()),
	)
	return nil
}

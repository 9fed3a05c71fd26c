package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ahrav/shellguard/internal/app/guard"
	"github.com/ahrav/shellguard/internal/app/redaction"
	"github.com/ahrav/shellguard/internal/config"
	"github.com/ahrav/shellguard/internal/config/fileloader"
	"github.com/ahrav/shellguard/internal/domain/security"
	"github.com/ahrav/shellguard/internal/infra/classify"
	"github.com/ahrav/shellguard/internal/infra/console"
	"github.com/ahrav/shellguard/internal/infra/detect"
	"github.com/ahrav/shellguard/internal/infra/shell"
	"github.com/ahrav/shellguard/pkg/common/logger"
	"github.com/ahrav/shellguard/pkg/common/otel"
)

const serviceType = "shellguard"

func main() {
	_, _ = maxprocs.Set()

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := fileloader.NewFileLoader(configPath).Load(context.Background())
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = *loaded
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("failed to get hostname: %v", err)
	}

	logEvents := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			errorAttrs := map[string]any{
				"error_message": r.Message,
				"error_time":    r.Time.UTC().Format(time.RFC3339),
				"trace_id":      otel.GetTraceID(ctx),
			}

			// Add any error-specific attributes.
			for k, v := range r.Attributes {
				errorAttrs[k] = v
			}

			errorAttrsJSON, err := json.Marshal(errorAttrs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to marshal error attributes: %v\n", err)
				return
			}

			// Output the error event with valid JSON details.
			fmt.Fprintf(os.Stderr, "Error event: %s, details: %s\n",
				r.Message, errorAttrsJSON)
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return otel.GetTraceID(ctx)
	}

	svcName := fmt.Sprintf("SHELLGUARD-%s", hostname)
	metadata := map[string]string{
		"service":  svcName,
		"hostname": hostname,
		"app":      serviceType,
	}

	// Logs go to stderr; stdout belongs to the operator loop and the
	// transcripts it prints.
	log := logger.NewWithMetadata(os.Stderr, logLevel(cfg.Log.Level), svcName, traceIDFn, logEvents, metadata)

	// Setup signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigCh
		log.Info(ctx, "shutdown signal received")
		cancel()
	}()

	// Initialize telemetry. Without an exporter the tracer is a noop and
	// the meter provider records without exporting.
	tracer := tracenoop.NewTracerProvider().Tracer(serviceType)
	var mp metric.MeterProvider
	if cfg.Telemetry.Enabled {
		excluded := make(map[string]struct{}, len(cfg.Telemetry.ExcludedSpans))
		for _, name := range cfg.Telemetry.ExcludedSpans {
			excluded[name] = struct{}{}
		}
		tp, telemetryTeardown, err := otel.InitTelemetry(log, otel.Config{
			ServiceName:      cfg.Telemetry.ServiceName,
			ExporterEndpoint: cfg.Telemetry.ExporterEndpoint,
			ExcludedSpans:    excluded,
			Probability:      cfg.Telemetry.SampleRate,
			ResourceAttributes: map[string]string{
				"library.language": "go",
				"host.name":        hostname,
			},
			InsecureExporter: cfg.Telemetry.Insecure,
		})
		if err != nil {
			log.Error(ctx, "failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer telemetryTeardown(context.Background())

		tracer = tp.Tracer(cfg.Telemetry.ServiceName)
		mp = otel.GetMeterProvider()
	} else {
		mp = otel.NewMeterProvider(serviceType)
	}

	// Secret detection engine and the redactor in front of stdout.
	tuning, err := detect.LoadTuning(cfg.Detector.TuningPath)
	if err != nil {
		log.Error(ctx, "failed to load detector tuning", "error", err)
		os.Exit(1)
	}

	plugins, err := detect.DefaultPlugins(tuning)
	if err != nil {
		log.Error(ctx, "failed to build detection plugins", "error", err)
		os.Exit(1)
	}

	filters, err := detect.DefaultFilters(tuning)
	if err != nil {
		log.Error(ctx, "failed to build detection filters", "error", err)
		os.Exit(1)
	}

	detectionMetrics, err := detect.NewDetectionMetrics(mp)
	if err != nil {
		log.Error(ctx, "failed to create detection metrics", "error", err)
		os.Exit(1)
	}

	engine := detect.NewEngine(plugins, filters, log, tracer, detectionMetrics)
	redactor := redaction.NewRedactor(engine, cfg.Detector.MaskToken, log)

	// Transcript sink. Everything sessions mirror into it is redacted
	// before it reaches disk.
	var transcript io.Writer
	if cfg.Shell.TranscriptPath != "" {
		f, err := os.OpenFile(cfg.Shell.TranscriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Error(ctx, "failed to open transcript file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		transcript = redaction.NewRedactingWriter(ctx, f, redactor)
	}

	// Interaction classifiers: heuristic backends behind retry and a
	// process-wide rate limit.
	classifier := classify.NewThrottledClassifier(
		classify.NewRetryClassifier(classify.NewHeuristicClassifier(), log),
		cfg.Classify.RateLimitPerSec,
		cfg.Classify.RateLimitBurst,
	)
	longRun := classify.NewHeuristicProcessReviewer()
	safety := classify.NewRetrySafetyClassifier(classify.NewBlindWriteSafetyClassifier(), log)

	// Shell sessions.
	sessionMetrics, err := shell.NewSessionMetrics(mp)
	if err != nil {
		log.Error(ctx, "failed to create session metrics", "error", err)
		os.Exit(1)
	}

	sessionCfg := shell.SessionConfig{
		Shell:          cfg.Shell.Shell,
		Login:          cfg.Shell.Login,
		Columns:        uint16(cfg.Shell.Columns),
		InitTimeout:    cfg.Shell.InitTimeout,
		ReadTimeout:    cfg.Shell.ReadTimeout,
		ReadBufferSize: cfg.Shell.ReadBufferSize,
	}
	factory := func(ctx context.Context, id string) (*shell.Session, error) {
		return shell.StartSession(ctx, id, sessionCfg, classifier, longRun, transcript, log, tracer, sessionMetrics)
	}

	registry, err := shell.NewRegistry(ctx, factory, log)
	if err != nil {
		log.Error(ctx, "failed to start main shell session", "error", err)
		os.Exit(1)
	}

	// Command security guard with the interactive console as its prompter.
	operator := console.New(os.Stdout)
	guardSvc, err := guard.New(security.NewContext(), safety, operator, guard.Config{
		ProjectRoot: cfg.Guard.ProjectRoot,
		Patterns:    cfg.Guard.ForbiddenPatterns,
	}, log, tracer)
	if err != nil {
		log.Error(ctx, "failed to create security guard", "error", err)
		os.Exit(1)
	}

	log.Info(ctx, "shellguard ready", "shell", cfg.Shell.Shell)

	r := &repl{
		registry: registry,
		guard:    guardSvc,
		redactor: redactor,
		console:  operator,
		logger:   log,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	r.run(ctx)

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cleanupCancel()
	registry.Cleanup(cleanupCtx)
	log.Info(ctx, "shutdown complete")
}

// logLevel maps the configured level name to a logger level. The config is
// validated, so anything unexpected here just means info.
func logLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// Package observability wires optional OpenTelemetry tracing for the catalog
// server. Disabled unless TRACING_ENABLED is set; with no OTLP endpoint
// configured, spans go to stdout, which is enough for local debugging of the
// generation and storage call chains.
package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/elemephant/backend/internal/platform/envutil"
	"github.com/elemephant/backend/internal/platform/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

type tracingEnv struct {
	enabled     bool
	endpoint    string
	insecure    bool
	headers     map[string]string
	sampleRatio float64
}

func readTracingEnv() tracingEnv {
	env := tracingEnv{
		enabled:  envutil.Bool("TRACING_ENABLED", false),
		endpoint: envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		insecure: envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}

	ratio := float64(envutil.Int("TRACING_SAMPLE_PERCENT", 10)) / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	env.sampleRatio = ratio

	for _, pair := range strings.Split(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""), ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		if env.headers == nil {
			env.headers = map[string]string{}
		}
		env.headers[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return env
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the tracer provider and returns its shutdown function,
// or nil when tracing is disabled.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		env := readTracingEnv()
		if !env.enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "elemephant"
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("otel resource init failed, continuing without attributes", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(env.sampleRatio))),
			sdktrace.WithResource(res),
		}
		exporter, err := newExporter(ctx, env)
		if err != nil {
			log.Warn("otel exporter init failed, spans will be dropped", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("tracing initialized", "service", serviceName, "endpoint", env.endpoint, "sample_ratio", env.sampleRatio)
	})
	return otelShutdown
}

func newExporter(ctx context.Context, env tracingEnv) (sdktrace.SpanExporter, error) {
	if env.endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(env.endpoint)}
	if env.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if env.headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(env.headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

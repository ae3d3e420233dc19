package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersSaved      metric.Int64Counter
	tasksSaved       metric.Int64Counter
	propagationRuns  metric.Int64Counter
	checkResults     metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rms"
	}
	meter := provider.Meter(name)

	ordersSaved, err := meter.Int64Counter("rms_service_orders_saved_total")
	if err != nil {
		return nil, err
	}
	tasksSaved, err := meter.Int64Counter("rms_task_details_saved_total")
	if err != nil {
		return nil, err
	}
	propagationRuns, err := meter.Int64Counter("rms_propagation_runs_total")
	if err != nil {
		return nil, err
	}
	checkResults, err := meter.Int64Counter("rms_check_results_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("rms_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("rms_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersSaved:      ordersSaved,
		tasksSaved:       tasksSaved,
		propagationRuns:  propagationRuns,
		checkResults:     checkResults,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordOrderSaved increments service order save counts.
func (m *Metrics) RecordOrderSaved(ctx context.Context, checkType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("check_type", strings.TrimSpace(checkType)))
	m.ordersSaved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTaskSaved increments task detail save counts.
func (m *Metrics) RecordTaskSaved(ctx context.Context, taskType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("task_type", strings.TrimSpace(taskType)))
	m.tasksSaved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPropagationRun increments propagation rule executions.
func (m *Metrics) RecordPropagationRun(ctx context.Context, rule, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("rule", strings.TrimSpace(rule)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.propagationRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheckResult increments resource check result writes.
func (m *Metrics) RecordCheckResult(ctx context.Context, checkType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("check_type", strings.TrimSpace(checkType)))
	m.checkResults.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"check_type":  {},
	"task_type":   {},
	"rule":        {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

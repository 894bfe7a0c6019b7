// Package telemetry exposes pipeline counters through OpenTelemetry metrics.
package telemetry

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"regdocs/internal/models"
)

const meterName = "regdocs/pipeline"

// Metric names.
const (
	MetricDiscovered  = "regdocs.documents.discovered"
	MetricDownloaded  = "regdocs.documents.downloaded"
	MetricExtracted   = "regdocs.documents.extracted"
	MetricQuarantined = "regdocs.documents.quarantined"
	MetricRuns        = "regdocs.runs"
	MetricDuration    = "regdocs.run.duration"
)

// Metrics records per-run counters.
type Metrics struct {
	discovered  metric.Int64Counter
	downloaded  metric.Int64Counter
	extracted   metric.Int64Counter
	quarantined metric.Int64Counter
	runs        metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.discovered, MetricDiscovered, "Candidate documents found by discovery", "{document}"},
		{&m.downloaded, MetricDownloaded, "Documents written to staging", "{document}"},
		{&m.extracted, MetricExtracted, "Records extracted into the batch", "{record}"},
		{&m.quarantined, MetricQuarantined, "Staged files moved to quarantine", "{document}"},
		{&m.runs, MetricRuns, "Source runs by final status", "{run}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}

		*c.dst = counter
	}

	var err error

	m.duration, err = meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Source run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricDuration, err)
	}

	return m, nil
}

// Noop returns metrics that record nothing.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(meterName))

	return m
}

// RecordRun adds the counts of one run report.
func (m *Metrics) RecordRun(ctx context.Context, r models.RunReport) {
	src := metric.WithAttributes(attribute.String("source", r.Source))

	m.discovered.Add(ctx, int64(r.Discovered), src)
	m.downloaded.Add(ctx, int64(r.Downloaded), src)
	m.extracted.Add(ctx, int64(r.Extracted), src)
	m.quarantined.Add(ctx, int64(r.Quarantined), src)
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", r.Source),
		attribute.String("status", string(r.Status)),
	))
	m.duration.Record(ctx, r.Duration().Seconds(), src)
}

// Provider is an in-process meter provider whose totals can be read back,
// used by the CLIs to print a summary at exit.
type Provider struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewProvider creates a provider backed by a manual reader.
func NewProvider() *Provider {
	reader := sdkmetric.NewManualReader()

	return &Provider{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Meter returns the pipeline meter.
func (p *Provider) Meter() metric.Meter {
	return p.provider.Meter(meterName)
}

// Totals collects every Int64 sum, keyed by metric name and attributes,
// e.g. "regdocs.documents.extracted{source=creg}".
func (p *Provider) Totals(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}

	totals := make(map[string]int64)

	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			sum, ok := mt.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				totals[seriesKey(mt.Name, dp.Attributes)] += dp.Value
			}
		}
	}

	return totals, nil
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

func seriesKey(name string, attrs attribute.Set) string {
	kvs := attrs.ToSlice()
	if len(kvs) == 0 {
		return name
	}

	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}

	sort.Strings(parts)

	key := name + "{"
	for i, p := range parts {
		if i > 0 {
			key += ","
		}

		key += p
	}

	return key + "}"
}

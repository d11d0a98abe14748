// Package events delivers sale notifications to logs, webhooks and metrics.
package events

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sales_api/internal/metrics"
	"sales_api/internal/sales"
)

// LogPublisher writes every event to a zap logger.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event sales.Event) error {
	fields := []zap.Field{
		zap.String("event", event.EventType()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case sales.SaleCreated:
		fields = append(fields,
			zap.String("sale_id", e.SaleID.String()),
			zap.String("sale_number", e.SaleNumber),
			zap.String("customer", e.Customer.Name),
			zap.String("customer_email", e.Customer.Email),
			zap.String("branch", e.Branch.Name),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.Int("item_count", e.ItemCount),
			zap.Any("items", e.Items))
	case sales.SaleCancelled:
		fields = append(fields,
			zap.String("sale_id", e.SaleID.String()),
			zap.String("sale_number", e.SaleNumber),
			zap.String("customer", e.Customer.Name),
			zap.String("branch", e.Branch.Name),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.Time("original_sale_date", e.OriginalSaleDate),
			zap.Int("item_count", len(e.Items)),
			zap.Int("skipped_products", len(e.SkippedProducts)))
	default:
		fields = append(fields, zap.Any("payload", event))
	}
	p.logger.Info("domain event", fields...)
	return nil
}

// MetricsPublisher turns events into prometheus counters.
type MetricsPublisher struct {
	metrics *metrics.Metrics
}

func NewMetricsPublisher(m *metrics.Metrics) *MetricsPublisher {
	return &MetricsPublisher{metrics: m}
}

func (p *MetricsPublisher) Publish(_ context.Context, event sales.Event) error {
	switch e := event.(type) {
	case sales.SaleCreated:
		p.metrics.SalesCreated.WithLabelValues(e.Branch.Code).Inc()
		p.metrics.SalesAmount.WithLabelValues(e.Branch.Code).Add(e.TotalAmount.InexactFloat64())
		for _, item := range e.Items {
			p.metrics.ItemsSold.WithLabelValues(item.ProductSKU).Add(float64(item.Quantity))
		}
	case sales.SaleCancelled:
		p.metrics.SalesCancelled.WithLabelValues(e.Branch.Code).Inc()
		skipped := make(map[string]bool, len(e.SkippedProducts))
		for _, id := range e.SkippedProducts {
			skipped[id.String()] = true
		}
		for _, item := range e.Items {
			if skipped[item.ProductID.String()] {
				continue
			}
			p.metrics.StockRestored.WithLabelValues(item.ProductSKU).Add(float64(item.Quantity))
		}
	default:
		return fmt.Errorf("unsupported event %q", event.EventType())
	}
	return nil
}

// FanOut publishes each event to every sink concurrently. A failing sink
// does not stop the others; all failures are joined into the returned error.
type FanOut struct {
	sinks []sales.Publisher
}

func NewFanOut(sinks ...sales.Publisher) *FanOut {
	return &FanOut{sinks: sinks}
}

func (f *FanOut) Publish(ctx context.Context, event sales.Event) error {
	errs := make([]error, len(f.sinks))
	var g errgroup.Group
	for i, sink := range f.sinks {
		g.Go(func() error {
			errs[i] = sink.Publish(ctx, event)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

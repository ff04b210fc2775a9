package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBInstrumentation adds tracing, a query duration histogram and slow query
// logging to a GORM handle
type DBInstrumentation struct {
	slowQuery time.Duration
	logger    *zap.Logger
	duration  metric.Float64Histogram
}

// NewDBInstrumentation creates the query duration instrument on meter
func NewDBInstrumentation(meter metric.Meter, slowQuery time.Duration, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hist, err := meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Duration of database operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}
	return &DBInstrumentation{slowQuery: slowQuery, logger: logger, duration: hist}, nil
}

// Register installs the callbacks. otelgorm spans are added only when withSpans
// is set, and query variables are never attached to spans.
func (d *DBInstrumentation) Register(db *gorm.DB, withSpans bool) error {
	if withSpans {
		if err := db.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName("postgresql"),
			otelgorm.WithoutQueryVariables(),
		)); err != nil {
			return fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	cb := db.Callback()
	steps := []struct {
		op       string
		register func(name string, before bool) error
	}{
		{"create", func(name string, before bool) error {
			if before {
				return cb.Create().Before("gorm:create").Register(name, d.before)
			}
			return cb.Create().After("gorm:create").Register(name, d.afterFunc("create"))
		}},
		{"query", func(name string, before bool) error {
			if before {
				return cb.Query().Before("gorm:query").Register(name, d.before)
			}
			return cb.Query().After("gorm:query").Register(name, d.afterFunc("query"))
		}},
		{"update", func(name string, before bool) error {
			if before {
				return cb.Update().Before("gorm:update").Register(name, d.before)
			}
			return cb.Update().After("gorm:update").Register(name, d.afterFunc("update"))
		}},
		{"delete", func(name string, before bool) error {
			if before {
				return cb.Delete().Before("gorm:delete").Register(name, d.before)
			}
			return cb.Delete().After("gorm:delete").Register(name, d.afterFunc("delete"))
		}},
		{"row", func(name string, before bool) error {
			if before {
				return cb.Row().Before("gorm:row").Register(name, d.before)
			}
			return cb.Row().After("gorm:row").Register(name, d.afterFunc("row"))
		}},
		{"raw", func(name string, before bool) error {
			if before {
				return cb.Raw().Before("gorm:raw").Register(name, d.before)
			}
			return cb.Raw().After("gorm:raw").Register(name, d.afterFunc("raw"))
		}},
	}
	for _, s := range steps {
		if err := s.register("telemetry:before_"+s.op, true); err != nil {
			return err
		}
		if err := s.register("telemetry:after_"+s.op, false); err != nil {
			return err
		}
	}

	d.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", withSpans),
		zap.Duration("slow_query_threshold", d.slowQuery),
	)
	return nil
}

func (d *DBInstrumentation) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (d *DBInstrumentation) afterFunc(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		ctx := db.Statement.Context

		failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)
		attrs := []attribute.KeyValue{
			attribute.String("db.operation.name", op),
			attribute.String("db.collection.name", db.Statement.Table),
			attribute.Bool("error", failed),
		}
		if ctx != nil {
			d.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
		}

		var span trace.Span
		if ctx != nil {
			span = trace.SpanFromContext(ctx)
		}
		if span != nil && span.IsRecording() {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
			if failed {
				span.SetStatus(codes.Error, db.Error.Error())
				span.RecordError(db.Error)
			}
		}

		if d.slowQuery > 0 && elapsed > d.slowQuery {
			if span != nil && span.IsRecording() {
				span.SetAttributes(attribute.Bool("db.slow_query", true))
			}
			d.logger.Warn("Slow database query",
				zap.String("operation", op),
				zap.String("table", db.Statement.Table),
				zap.Duration("elapsed", elapsed),
				zap.Int64("rows", db.Statement.RowsAffected),
			)
		}
	}
}

package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxSpanKey struct{}

// Statements here are short (a bill header insert, an item batch); the cap
// only guards against a pathological generated query.
const maxTracedSQL = 200

// PGXTracer implements pgx.QueryTracer, creating one span per statement.
type PGXTracer struct{}

// TraceQueryStart starts a span for the SQL statement.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx, span := otel.Tracer("db.pgx").Start(ctx, "pgx.query")
	sql := strings.TrimSpace(data.SQL)
	span.SetAttributes(attribute.String("db.system", "postgresql"))
	if sql != "" {
		if len(sql) > maxTracedSQL {
			sql = sql[:maxTracedSQL] + "..."
		}
		span.SetAttributes(
			attribute.String("db.statement", sql),
			attribute.String("db.operation", strings.Fields(sql)[0]),
		)
	}
	return context.WithValue(ctx, ctxSpanKey{}, span)
}

// TraceQueryEnd ends the span and records any error.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if span, ok := ctx.Value(ctxSpanKey{}).(trace.Span); ok {
		if data.Err != nil {
			span.RecordError(data.Err)
		}
		span.End()
	}
}

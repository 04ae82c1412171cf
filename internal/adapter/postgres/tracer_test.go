package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
)

func TestOperationName(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "select"},
		{"\n\tINSERT INTO reviews (game_name) VALUES ($1)", "insert"},
		{"with x as (select 1) select * from x", "with"},
		{"CREATE TABLE IF NOT EXISTS reviews ()", "create"},
		{"SELECT pg_advisory_lock($1)", "select"},
		{"VACUUM", "other"},
		{"", "unknown"},
		{"   ", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, operationName(tt.sql))
		})
	}
}

func TestQueryTracer_RecordsDurationAndErrors(t *testing.T) {
	m := metrics.NewStoreMetrics(metrics.NewRegistry())
	tracer := &queryTracer{metrics: m}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "INSERT INTO reviews VALUES (1)"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("constraint violation")})

	assert.Equal(t, 2, testutil.CollectAndCount(m.OpDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpErrors.WithLabelValues(backendName, "select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpErrors.WithLabelValues(backendName, "insert")))
}

func TestQueryTracer_EndWithoutStartIsIgnored(t *testing.T) {
	m := metrics.NewStoreMetrics(metrics.NewRegistry())
	tracer := &queryTracer{metrics: m}

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 0, testutil.CollectAndCount(m.OpDuration))
}

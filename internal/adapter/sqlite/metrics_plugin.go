package sqlite

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
)

const backendName = "sqlite"

const startKey = "metrics:start"

// metricsPlugin times each gorm callback chain into StoreMetrics. The
// operation label is the chain name, so cardinality stays fixed.
type metricsPlugin struct {
	metrics *metrics.StoreMetrics
}

var _ gorm.Plugin = (*metricsPlugin)(nil)

func newMetricsPlugin(m *metrics.StoreMetrics) *metricsPlugin {
	return &metricsPlugin{metrics: m}
}

func (p *metricsPlugin) Name() string { return "gamereview:metrics" }

func (p *metricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("metrics:before_create", p.start),
		cb.Create().After("gorm:create").Register("metrics:after_create", p.finish("create")),
		cb.Query().Before("gorm:query").Register("metrics:before_query", p.start),
		cb.Query().After("gorm:query").Register("metrics:after_query", p.finish("query")),
		cb.Update().Before("gorm:update").Register("metrics:before_update", p.start),
		cb.Update().After("gorm:update").Register("metrics:after_update", p.finish("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", p.start),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", p.finish("delete")),
		cb.Row().Before("gorm:row").Register("metrics:before_row", p.start),
		cb.Row().After("gorm:row").Register("metrics:after_row", p.finish("row")),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", p.start),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", p.finish("raw")),
	)
}

func (p *metricsPlugin) start(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (p *metricsPlugin) finish(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)
		p.metrics.Observe(backendName, op, time.Since(started).Seconds(), failed)
	}
}

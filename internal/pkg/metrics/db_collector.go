package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolStats is the subset of *pgxpool.Stat the collector reads.
type PoolStats interface {
	AcquiredConns() int32
	IdleConns() int32
	ConstructingConns() int32
	MaxConns() int32
	EmptyAcquireCount() int64
}

// RecordDBPoolMetrics snapshots pool state into the db gauges.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	recordPoolStats(pool.Stat())
}

func recordPoolStats(stats PoolStats) {
	DBPoolConnections.WithLabelValues("in_use").Set(float64(stats.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	DBPoolConnections.WithLabelValues("constructing").Set(float64(stats.ConstructingConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(stats.MaxConns()))
	DBPoolAcquireWaits.Set(float64(stats.EmptyAcquireCount()))
}

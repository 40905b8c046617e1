package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

const auditActionsQuery = `
SELECT action, COUNT(*) FROM console_audit_logs
WHERE created_at > NOW() - INTERVAL '24 hours'
GROUP BY action`

// auditCollector reports audited console writes per action at scrape time.
type auditCollector struct {
	db     *sql.DB
	logger zerolog.Logger
	desc   *prometheus.Desc
}

func newAuditCollector(db *sql.DB, logger zerolog.Logger) *auditCollector {
	return &auditCollector{
		db:     db,
		logger: logger,
		desc: prometheus.NewDesc(
			metricPrefix+"audit_entries_24h",
			"Audit entries written in the last 24 hours by action",
			[]string{"action"}, nil,
		),
	}
}

func (c *auditCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *auditCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := c.db.QueryContext(ctx, auditActionsQuery)
	if err != nil {
		c.logger.Warn().Err(err).Msg("audit metrics query failed")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var (
			action string
			count  int64
		)
		if err := rows.Scan(&action, &count); err != nil {
			c.logger.Warn().Err(err).Msg("audit metrics scan failed")
			return
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(count), action)
	}
	if err := rows.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("audit metrics rows failed")
	}
}

func registerDBMetrics(db *sql.DB, logger zerolog.Logger) {
	prometheus.MustRegister(
		newAuditCollector(db, logger),
		collectors.NewDBStatsCollector(db, "console_audit"),
	)
}

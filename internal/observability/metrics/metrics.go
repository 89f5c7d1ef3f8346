package metrics

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pos_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	salesRecorded *prometheus.CounterVec

	stockAdjustments *prometheus.CounterVec

	sessionsOpened  prometheus.Counter
	sessionsClosed  *prometheus.CounterVec
	sessionDuration prometheus.Histogram
	openSessions    prometheus.Gauge

	incomeQueries *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	salesTotalGauge prometheus.Gauge
)

// Init registers observability metrics and a DB-backed sales gauge.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		salesRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sales_recorded_total",
				Help: "Total sale records appended by category",
			},
			[]string{"category"},
		)
		stockAdjustments = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stock_adjustments_total",
				Help: "Total stock adjustments by result",
			},
			[]string{"result"},
		)

		sessionsOpened = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_opened_total",
				Help: "Total rental sessions opened",
			},
		)
		sessionsClosed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_closed_total",
				Help: "Total rental sessions closed by result",
			},
			[]string{"result"},
		)
		sessionDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "session_duration_minutes",
				Help:    "Billed session durations in minutes",
				Buckets: []float64{15, 30, 60, 90, 120, 180, 240, 360},
			},
		)
		openSessions = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "open_sessions",
				Help: "Currently open rental sessions",
			},
		)

		incomeQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "income_queries_total",
				Help: "Total income aggregation queries by kind",
			},
			[]string{"kind"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		salesTotalGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "sale_records",
				Help: "Total persisted sale records",
			},
		)

		prometheus.MustRegister(
			salesRecorded,
			stockAdjustments,
			sessionsOpened,
			sessionsClosed,
			sessionDuration,
			openSessions,
			incomeQueries,
			exportTotal,
			exportLatency,
			salesTotalGauge,
		)

		if db != nil {
			go pollSaleCount(db, logger)
		}
	})
}

func pollSaleCount(db *sql.DB, logger *log.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var count int64
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count)
		cancel()
		if err != nil {
			if logger != nil {
				logger.Printf("sales gauge poll error: %v", err)
			}
			continue
		}
		if salesTotalGauge != nil {
			salesTotalGauge.Set(float64(count))
		}
	}
}

// SaleRecorded increments the sale counter for a category.
func SaleRecorded(category string) {
	if category == "" {
		category = "unknown"
	}
	if salesRecorded != nil {
		salesRecorded.WithLabelValues(category).Inc()
	}
}

// StockAdjusted increments the stock adjustment counter.
func StockAdjusted(result string) {
	if result == "" {
		result = resultSuccess
	}
	if stockAdjustments != nil {
		stockAdjustments.WithLabelValues(result).Inc()
	}
}

// SessionOpened increments the opened-session counter and gauge.
func SessionOpened() {
	if sessionsOpened != nil {
		sessionsOpened.Inc()
	}
	if openSessions != nil {
		openSessions.Inc()
	}
}

// SessionClosed records a close result and the billed duration.
func SessionClosed(result string, minutes int) {
	if result == "" {
		result = resultSuccess
	}
	if sessionsClosed != nil {
		sessionsClosed.WithLabelValues(result).Inc()
	}
	if sessionDuration != nil && minutes >= 0 {
		sessionDuration.Observe(float64(minutes))
	}
	if openSessions != nil {
		openSessions.Dec()
	}
}

// IncomeQueried increments the income query counter.
func IncomeQueried(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	if incomeQueries != nil {
		incomeQueries.WithLabelValues(kind).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingsCreated 创建成功的预订数
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotmail_bookings_created_total",
			Help: "Number of bookings created, by price source",
		},
		[]string{"price_source"},
	)

	// BookingsCancelled 取消的预订数
	BookingsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotmail_bookings_cancelled_total",
			Help: "Number of bookings cancelled, by reason",
		},
		[]string{"reason"},
	)

	// BookingsPaid 支付成功的预订数
	BookingsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotmail_bookings_paid_total",
		Help: "Number of bookings marked paid",
	})

	// SlotConflicts 因格子已被占用而拒绝的请求数
	SlotConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotmail_slot_conflicts_total",
			Help: "Number of booking attempts rejected because the slot was taken",
		},
		[]string{"stage"}, // create or payment
	)

	// RateLimited 被限流拒绝的请求数
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotmail_rate_limited_total",
			Help: "Number of requests rejected by the rate limiter, by rule",
		},
		[]string{"rule"},
	)

	// ReaperReaped 回收的超时预订数
	ReaperReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotmail_reaper_reaped_total",
		Help: "Number of stale pending bookings cancelled by the reaper",
	})

	// ReaperFailures 回收失败次数
	ReaperFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotmail_reaper_failures_total",
		Help: "Number of per-booking reaper failures",
	})

	// ReaperTickDuration 单次回收耗时
	ReaperTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "slotmail_reaper_tick_duration_seconds",
		Help: "Duration of reaper ticks in seconds",
		Buckets: []float64{
			0.01,
			0.05,
			0.1,
			0.5,
			1.0,
			5.0,
			10.0,
			30.0,
		},
	})
)

// RecordBookingCreated 记录预订创建
func RecordBookingCreated(priceSource string) {
	BookingsCreated.WithLabelValues(priceSource).Inc()
}

// RecordBookingCancelled 记录预订取消
func RecordBookingCancelled(reason string) {
	BookingsCancelled.WithLabelValues(reason).Inc()
}

// RecordSlotConflict 记录格子冲突
func RecordSlotConflict(stage string) {
	SlotConflicts.WithLabelValues(stage).Inc()
}

// RecordRateLimited 记录限流拒绝
func RecordRateLimited(rule string) {
	RateLimited.WithLabelValues(rule).Inc()
}

// RecordReaperTick 记录一次回收的结果
func RecordReaperTick(reaped, failed int, seconds float64) {
	ReaperReaped.Add(float64(reaped))
	ReaperFailures.Add(float64(failed))
	ReaperTickDuration.Observe(seconds)
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

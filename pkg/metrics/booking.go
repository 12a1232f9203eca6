package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wanderlust"

// BookingMetrics records the booking flow: how prices were resolved, how
// intent creation went, and whether booking rows were written.
type BookingMetrics struct {
	pricing   *prometheus.CounterVec
	intents   *prometheus.CounterVec
	records   *prometheus.CounterVec
	processor *prometheus.HistogramVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	pricing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_resolutions_total",
		Help:      "Price resolutions by the tier that produced the unit price.",
	}, []string{"source"})
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Payment intent creation attempts by outcome.",
	}, []string{"outcome"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_records_total",
		Help:      "Booking row inserts by outcome.",
	}, []string{"outcome"})
	processor := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "processor_call_duration_seconds",
		Help:      "Latency of payment processor calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(pricing, intents, records, processor)
	return &BookingMetrics{
		pricing:   pricing,
		intents:   intents,
		records:   records,
		processor: processor,
	}
}

// IncPriceResolution counts a resolution served by source (static, store or fallback).
func (m *BookingMetrics) IncPriceResolution(source string) {
	if m == nil || m.pricing == nil {
		return
	}
	m.pricing.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncIntent counts an intent creation outcome (created, invalid or failed).
func (m *BookingMetrics) IncIntent(outcome string) {
	if m == nil || m.intents == nil {
		return
	}
	m.intents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncBookingRecord counts a booking insert outcome (recorded or failed).
func (m *BookingMetrics) IncBookingRecord(outcome string) {
	if m == nil || m.records == nil {
		return
	}
	m.records.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveProcessorCall records the latency of a processor operation.
func (m *BookingMetrics) ObserveProcessorCall(operation string, duration time.Duration) {
	if m == nil || m.processor == nil {
		return
	}
	m.processor.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

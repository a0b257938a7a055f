// Package metrics holds the Prometheus collectors for ledger uploads and HTTP traffic.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/prometheus/client_golang/prometheus"
)

// Upload stages.
const (
	StagePreview = "preview"
	StageCommit  = "commit"
	StageDelete  = "delete"
)

// Outcome labels, kept low-cardinality.
const (
	OutcomeSuccess      = "success"
	OutcomeValidation   = "validation"
	OutcomeFormat       = "format"
	OutcomeForbidden    = "forbidden"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeCancelled    = "cancelled"
	OutcomePersistence  = "persistence"
	OutcomeUnknown      = "unknown"
)

// Metrics exposes ledger upload and HTTP instruments.
type Metrics struct {
	uploads        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	rowsParsed     *prometheus.CounterVec
	rowsSkipped    prometheus.Counter
	accountChanges *prometheus.CounterVec
	notifyFailures prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with registerer
// (prometheus.DefaultRegisterer when nil).
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_ledger_uploads_total",
			Help: "Ledger upload operations by stage and outcome.",
		}, []string{"stage", "outcome"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recon_ledger_upload_duration_seconds",
			Help:    "Ledger upload latency including parse, diff and replace.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),
		rowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_ledger_rows_parsed_total",
			Help: "Transaction rows parsed from uploaded exports.",
		}, []string{"stage"}),
		rowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recon_ledger_rows_skipped_total",
			Help: "Data rows the parser could not read.",
		}),
		accountChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_ledger_account_changes_total",
			Help: "Per-account changes reported by re-upload previews.",
		}, []string{"change_type"}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recon_ledger_notify_failures_total",
			Help: "Ledger change notifications that could not be delivered.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_http_requests_total",
			Help: "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recon_http_request_duration_seconds",
			Help:    "HTTP request latency by route template.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registerer.MustRegister(
		m.uploads,
		m.uploadDuration,
		m.rowsParsed,
		m.rowsSkipped,
		m.accountChanges,
		m.notifyFailures,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ClassifyOutcome maps an operation error to an outcome label.
func ClassifyOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, apperrors.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, apperrors.ErrFormat):
		return OutcomeFormat
	case errors.Is(err, apperrors.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, apperrors.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case errors.Is(err, apperrors.ErrPersistence):
		return OutcomePersistence
	default:
		return OutcomeUnknown
	}
}

// ObserveUpload records one finished upload operation.
func (m *Metrics) ObserveUpload(stage string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(stage, ClassifyOutcome(err)).Inc()
	m.uploadDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// AddRows records parsed and skipped row counts for a stage.
func (m *Metrics) AddRows(stage string, parsed, skipped int) {
	if m == nil {
		return
	}
	m.rowsParsed.WithLabelValues(stage).Add(float64(parsed))
	m.rowsSkipped.Add(float64(skipped))
}

// AddAccountChange counts accounts reported with changeType in a preview.
func (m *Metrics) AddAccountChange(changeType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.accountChanges.WithLabelValues(changeType).Add(float64(n))
}

// IncNotifyFailure counts a ledger change notification that failed.
func (m *Metrics) IncNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

// ObserveHTTP records a served request. route is the router's path template.
func (m *Metrics) ObserveHTTP(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

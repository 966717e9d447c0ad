// Package metrics provides Prometheus instrumentation for request validation.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics counts validation outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// New creates the validation metrics and registers them with reg. Several
// validators may share one registerer: collectors that are already
// registered are reused. A nil reg yields unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: registerOrGet(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restparams_requests_total",
			Help: "Total number of requests validated, by handler and outcome.",
		}, []string{"handler", "outcome"})),
		rejections: registerOrGet(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restparams_rejections_total",
			Help: "Total number of rejected requests, by handler, parameter and reason.",
		}, []string{"handler", "param", "reason"})),
	}
}

func registerOrGet(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Accepted records a request whose parameters all validated.
func (m *Metrics) Accepted(handler string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, OutcomeAccepted).Inc()
}

// Rejected records a request rejected on param for reason.
func (m *Metrics) Rejected(handler, param, reason string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, OutcomeRejected).Inc()
	m.rejections.WithLabelValues(handler, param, reason).Inc()
}

// Failed records a request that could not be validated because of an
// internal error (e.g. a model store failure).
func (m *Metrics) Failed(handler string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, OutcomeFailed).Inc()
}

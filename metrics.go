package rpalog

import (
	stderrs "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var stepLabels = []string{"bot", "step", "status"}

// stepMetrics records the terminal outcome of tracked steps.
type stepMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

func newStepMetrics(reg prometheus.Registerer) (*stepMetrics, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpa_step_duration_seconds",
		Help:    "Wall-clock duration of tracked bot steps",
		Buckets: prometheus.DefBuckets,
	}, stepLabels)
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpa_steps_total",
		Help: "Number of tracked bot steps by terminal status",
	}, stepLabels)

	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrs.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		duration = existing
	}
	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrs.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		total = existing
	}

	return &stepMetrics{duration: duration, total: total}, nil
}

func (m *stepMetrics) observe(bot, step string, status Status, elapsed time.Duration) {
	m.duration.WithLabelValues(bot, step, string(status)).Observe(elapsed.Seconds())
	m.total.WithLabelValues(bot, step, string(status)).Inc()
}

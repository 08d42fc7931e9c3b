// Package metrics exposes loop and dispatcher counters as Prometheus collectors.
package metrics

import (
	"errors"

	"github.com/alitto/shuttle"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shuttle"

// RegisterDispatcher registers collectors for the task counters of a dispatcher.
// The name is attached to every series as the "dispatcher" label.
func RegisterDispatcher(reg prometheus.Registerer, name string, stats shuttle.Stats) error {
	labels := prometheus.Labels{"dispatcher": name}

	return register(reg,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "submitted_tasks_total",
			Help:        "Number of work units posted to the dispatcher",
			ConstLabels: labels,
		}, func() float64 {
			return float64(stats.SubmittedTasks())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "successful_tasks_total",
			Help:        "Number of work units that returned without error",
			ConstLabels: labels,
		}, func() float64 {
			return float64(stats.SuccessfulTasks())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "failed_tasks_total",
			Help:        "Number of work units that returned an error or panicked",
			ConstLabels: labels,
		}, func() float64 {
			return float64(stats.FailedTasks())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "running_tasks",
			Help:        "Number of work units executing on a worker goroutine",
			ConstLabels: labels,
		}, func() float64 {
			return float64(stats.RunningTasks())
		}),
	)
}

// RegisterLoop registers collectors for the event counters of a loop.
func RegisterLoop(reg prometheus.Registerer, loop *shuttle.Loop) error {
	return register(reg,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posted_events_total",
			Help:      "Number of events queued on the loop",
		}, func() float64 {
			return float64(loop.PostedEvents())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_events_total",
			Help:      "Number of events dispatched by the loop or a pumping post",
		}, func() float64 {
			return float64(loop.ProcessedEvents())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_events",
			Help:      "Number of events waiting in the loop's queue",
		}, func() float64 {
			return float64(loop.PendingEvents())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pump_depth",
			Help:      "Number of synchronous posts currently pumping the loop",
		}, func() float64 {
			return float64(loop.PumpDepth())
		}),
	)
}

func register(reg prometheus.Registerer, collectors ...prometheus.Collector) error {
	var errs []error
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

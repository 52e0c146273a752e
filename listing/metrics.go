package listing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder counts listing events in prometheus metrics.
type MetricsRecorder struct {
	tasksStarted prometheus.Counter
	taskErrors   prometheus.Counter
	shutdowns    prometheus.Counter
	transitions  *prometheus.CounterVec
}

// NewMetricsRecorder registers the listing metrics with reg. Passing nil uses
// the default registerer.
func NewMetricsRecorder(reg prometheus.Registerer) *MetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &MetricsRecorder{
		tasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirlist_tasks_started_total",
			Help: "Directory listing tasks started by pool workers",
		}),
		taskErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirlist_task_errors_total",
			Help: "Directories that could not be read",
		}),
		shutdowns: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirlist_pool_shutdowns_total",
			Help: "Worker pools shut down",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dirlist_state_transitions_total",
			Help: "List call state transitions by target state",
		}, []string{"state"}),
	}
}

// Record counts e in the matching metric.
func (m *MetricsRecorder) Record(e Event) {
	switch e.Kind {
	case EventTaskStart:
		m.tasksStarted.Inc()
	case EventTaskError:
		m.taskErrors.Inc()
	case EventPoolShutdown:
		m.shutdowns.Inc()
	case EventStateChange:
		m.transitions.WithLabelValues(e.State.String()).Inc()
	}
}

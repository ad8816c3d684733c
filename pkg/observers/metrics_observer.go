package observers

import (
	"github.com/anggasct/fsm"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports machine activity as Prometheus metrics.
// One observer can be shared by many machines; they are told apart by the
// machine label, which is the machine name.
type MetricsObserver struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	errors      *prometheus.CounterVec
	active      *prometheus.GaugeVec
}

// NewMetricsObserver creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetricsObserver(namespace string, reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_transitions_total",
			Help:      "Number of transitions between two different states.",
		}, []string{"machine", "from", "to", "action"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_rejections_total",
			Help:      "Number of actions that did not lead to a transition.",
		}, []string{"machine", "action", "reason"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_errors_total",
			Help:      "Number of errors reported by machines.",
		}, []string{"machine"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fsm_state_active",
			Help:      "Number of machines currently in a state.",
		}, []string{"machine", "state"}),
	}

	if reg != nil {
		for _, c := range o.Collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

// Collectors returns the underlying collectors
func (o *MetricsObserver) Collectors() []prometheus.Collector {
	return []prometheus.Collector{o.transitions, o.rejections, o.errors, o.active}
}

// OnTransition implements fsm.Observer
func (o *MetricsObserver) OnTransition(m fsm.Info, from, to fsm.StateID, action fsm.ActionID) {
	o.transitions.WithLabelValues(m.Name(), string(from), string(to), string(action)).Inc()
}

// OnStateEnter implements fsm.Observer
func (o *MetricsObserver) OnStateEnter(m fsm.Info, state fsm.StateID) {
	o.active.WithLabelValues(m.Name(), string(state)).Inc()
}

// OnStateExit implements fsm.ExtendedObserver
func (o *MetricsObserver) OnStateExit(m fsm.Info, state fsm.StateID) {
	o.active.WithLabelValues(m.Name(), string(state)).Dec()
}

// OnActionRejected implements fsm.ExtendedObserver
func (o *MetricsObserver) OnActionRejected(m fsm.Info, action fsm.ActionID, reason string) {
	o.rejections.WithLabelValues(m.Name(), string(action), reason).Inc()
}

// OnError implements fsm.ExtendedObserver
func (o *MetricsObserver) OnError(m fsm.Info, err error) {
	o.errors.WithLabelValues(m.Name()).Inc()
}

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EventMetrics учитывает события жизненного цикла заказов, прочитанные
// из Kafka обратным каналом (consumer group сервиса).
type EventMetrics struct {
	eventsConsumed *prometheus.CounterVec
}

// NewEventMetrics регистрирует метрики consumer'а в default registerer.
func NewEventMetrics() *EventMetrics {
	return newEventMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newEventMetricsWithRegisterer(registerer prometheus.Registerer) *EventMetrics {
	return &EventMetrics{
		eventsConsumed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "market_order_events_consumed_total",
			Help: "Total number of order lifecycle events consumed from Kafka.",
		}, []string{"event_type"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordEventConsumed увеличивает счётчик обработанных событий.
func (m *EventMetrics) RecordEventConsumed(eventType string) {
	if m == nil || m.eventsConsumed == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(eventType).Inc()
}

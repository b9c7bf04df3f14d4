package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors exported by one order book runner.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OrdersTotal     *prometheus.CounterVec
	TradesTotal     prometheus.Counter
	TradedQuantity  prometheus.Counter
	RestingOrders   prometheus.Gauge
	QueueDepth      prometheus.Gauge
	PublishFailures prometheus.Counter
}

func New(namespace string) *Metrics {
	return &Metrics{
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_total",
				Help:      "Total number of order actions processed.",
			},
			[]string{"action", "result"},
		),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Total number of trades executed.",
		}),
		TradedQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Total quantity executed across all trades.",
		}),
		RestingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Orders currently resting in the book.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "order_queue_depth",
			Help:      "Orders waiting in the runner mailbox.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Trade batches the publisher failed to store.",
		}),
	}
}

func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.OrdersTotal,
		m.TradesTotal,
		m.TradedQuantity,
		m.RestingOrders,
		m.QueueDepth,
		m.PublishFailures,
	)
}

// ObserveOrder counts one processed action
func (m *Metrics) ObserveOrder(action, result string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(action, result).Inc()
}

// ObserveTrades records a batch of fills
func (m *Metrics) ObserveTrades(count int, quantity int64) {
	if m == nil || count == 0 {
		return
	}
	m.TradesTotal.Add(float64(count))
	m.TradedQuantity.Add(float64(quantity))
}

func (m *Metrics) SetBookState(resting, queued int) {
	if m == nil {
		return
	}
	m.RestingOrders.Set(float64(resting))
	m.QueueDepth.Set(float64(queued))
}

func (m *Metrics) ObservePublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

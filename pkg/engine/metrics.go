package engine

import "github.com/prometheus/client_golang/prometheus"

// bookMetrics is the small set of counters/histogram the book maintains
// for component C10. Unlike the teacher's single process-global atomic
// counter (pkg/metrics/metrics.go), these are scoped to one private
// registry owned by the book — never the default global registry — and
// are never served over HTTP — that's a network interface this package
// intentionally stays out of. Exposing them is an external collaborator's
// decision; Metrics() hands back the registry for that.
type bookMetrics struct {
	registry        *prometheus.Registry
	ordersAdmitted  *prometheus.CounterVec
	ordersRejected  *prometheus.CounterVec
	tradesTotal     prometheus.Counter
	tradedQuantity  prometheus.Histogram
	orderPruneTotal prometheus.Counter
}

func newBookMetrics() *bookMetrics {
	reg := prometheus.NewRegistry()

	m := &bookMetrics{
		registry: reg,
		ordersAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "limitbook_orders_admitted_total",
			Help: "Orders admitted into the book, by order type.",
		}, []string{"type"}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "limitbook_orders_rejected_total",
			Help: "Orders rejected at admission, by order type and reason.",
		}, []string{"type", "reason"}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitbook_trades_total",
			Help: "Trades (bid/ask leg pairs) emitted by the matching engine.",
		}),
		tradedQuantity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "limitbook_traded_quantity",
			Help:    "Quantity traded per match.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
		orderPruneTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitbook_gfd_pruned_total",
			Help: "GOODFORDAY orders cancelled by the end-of-day pruner.",
		}),
	}

	reg.MustRegister(m.ordersAdmitted, m.ordersRejected, m.tradesTotal, m.tradedQuantity, m.orderPruneTotal)
	return m
}

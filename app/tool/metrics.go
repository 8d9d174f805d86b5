package tool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func newMetricsReg() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func regMetrics(r prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type serveMetrics struct {
	queryTotal      *prometheus.CounterVec // by proto
	invalidTotal    prometheus.Counter
	truncatedTotal  prometheus.Counter
	refusedTotal    prometheus.Counter
	blockedTotal    prometheus.Counter
	responseLatency prometheus.Histogram
}

func newServeMetrics(r prometheus.Registerer) (*serveMetrics, error) {
	m := &serveMetrics{
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "server_query_total",
			Help: "The total number of queries received",
		}, []string{"proto"}),
		invalidTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "server_invalid_msg_total",
			Help: "The total number of messages that could not be decoded",
		}),
		truncatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "server_truncated_resp_total",
			Help: "The total number of responses truncated to fit the client udp size",
		}),
		refusedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "server_refused_query_total",
			Help: "The total number of queries refused by the rate limiter",
		}),
		blockedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "server_blocked_query_total",
			Help: "The total number of queries refused by the block list",
		}),
		responseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "server_response_latency_millisecond",
			Help:    "The response latency in millisecond",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		}),
	}
	err := regMetrics(r, m.queryTotal, m.invalidTotal, m.truncatedTotal, m.refusedTotal, m.blockedTotal, m.responseLatency)
	if err != nil {
		return nil, err
	}
	return m, nil
}

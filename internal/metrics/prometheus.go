package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterCollectors wires m's counters into reg as GaugeFuncs/CounterFuncs,
// the same promauto.With(reg).New*Func pattern used to expose live atomic
// state without a push step. Returns reg's handler is left to the caller
// (an http.Handler is wired in cmd/duststorm, not here).
func RegisterCollectors(reg *prometheus.Registry, m *Metrics) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "duststorm_current_clients",
		Help: "Number of SOCKS5 client connections currently open.",
	}, func() float64 { return float64(m.Snapshot().CurrentClients) })

	promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "duststorm_historic_clients_total",
		Help: "Total number of SOCKS5 client connections accepted since start.",
	}, func() float64 { return float64(m.Snapshot().HistoricClients) })

	promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "duststorm_client_bytes_sent_total",
		Help: "Total bytes relayed from clients to their destinations.",
	}, func() float64 { return float64(m.Snapshot().ClientBytesSent) })

	promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "duststorm_client_bytes_received_total",
		Help: "Total bytes relayed from destinations back to clients.",
	}, func() float64 { return float64(m.Snapshot().ClientBytesReceived) })

	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "duststorm_current_managers",
		Help: "Number of Sandstorm admin sessions currently open.",
	}, func() float64 { return float64(m.Snapshot().CurrentManagers) })

	promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "duststorm_historic_managers_total",
		Help: "Total number of Sandstorm admin sessions accepted since start.",
	}, func() float64 { return float64(m.Snapshot().HistoricManagers) })
}

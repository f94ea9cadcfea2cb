package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa las métricas Prometheus del servicio sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TransactionsTotal   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	StockAlertsOpened   prometheus.Counter
	TxRetries           prometheus.Counter
}

// New registra las métricas bajo el namespace dado (por defecto "ledger" para las de negocio).
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
	m.TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_total",
			Help:      "Compras y ventas procesadas por tipo y resultado",
		},
		[]string{"kind", "outcome"},
	)
	m.TransactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "transaction_duration_seconds",
			Help:      "Duración de creación y eliminación de transacciones",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"kind", "op"},
	)
	m.StockAlertsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "stock_alerts_opened_total",
		Help:      "Alertas de stock bajo abiertas",
	})
	m.TxRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "db_tx_retries_total",
		Help:      "Reintentos de transacción por serialización o deadlock",
	})

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.TransactionsTotal, m.TransactionDuration, m.StockAlertsOpened, m.TxRetries,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP registra una petición HTTP atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveTransaction registra el resultado de una operación del motor (op: create|remove).
func (m *Metrics) ObserveTransaction(kind, op, outcome string, d time.Duration) {
	m.TransactionsTotal.WithLabelValues(kind, outcome).Inc()
	m.TransactionDuration.WithLabelValues(kind, op).Observe(d.Seconds())
}

// AlertOpened cuenta una alerta de stock bajo nueva.
func (m *Metrics) AlertOpened() { m.StockAlertsOpened.Inc() }

// TxRetried cuenta un reintento de transacción.
func (m *Metrics) TxRetried() { m.TxRetries.Inc() }

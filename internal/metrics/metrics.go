package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "points"

// Metrics набор prometheus коллекторов сервиса. Каждый экземпляр имеет собственный реестр, поэтому в тестах
// можно создавать сколько угодно экземпляров.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	settlements  *prometheus.CounterVec
	pointsEarned prometheus.Counter
	pointsUsed   prometheus.Counter
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlement attempts by result.",
		}, []string{"result"}),
		pointsEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "earned_total",
			Help:      "Points earned by settled transactions.",
		}),
		pointsUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "used_total",
			Help:      "Points redeemed by settled transactions.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.durations,
		m.settlements,
		m.pointsEarned,
		m.pointsUsed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest учитывает обработанный HTTP запрос.
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordSettlement учитывает попытку проведения транзакции. Для неуспешных попыток earned и used не учитываются.
func (m *Metrics) RecordSettlement(result string, earned, used domain.Amount) {
	m.settlements.WithLabelValues(result).Inc()
	if result != ResultOK {
		return
	}
	m.pointsEarned.Add(float64(earned.Int64()))
	m.pointsUsed.Add(float64(used.Int64()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

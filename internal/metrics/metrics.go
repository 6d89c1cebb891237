package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodshare"

// Metrics holds the application's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	donationsSubmitted  *prometheus.CounterVec
	donationTransitions *prometheus.CounterVec
	itemTransitions     *prometheus.CounterVec
	accountsPurged      prometheus.Counter
	jobRuns             *prometheus.CounterVec
	realtimeEvents      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
		donationsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "donations",
			Name:      "submitted_total",
			Help:      "Donations submitted, by delivery method.",
		}, []string{"delivery_method"}),
		donationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "donations",
			Name:      "status_transitions_total",
			Help:      "Donation status changes.",
		}, []string{"from", "to"}),
		itemTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "food_items",
			Name:      "status_transitions_total",
			Help:      "Food item status changes.",
		}, []string{"from", "to"}),
		accountsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "unverified_purged_total",
			Help:      "Unverified accounts removed by housekeeping.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		}, []string{"job", "success"}),
		realtimeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Lifecycle events published to staff dashboards.",
		}, []string{"type"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.donationsSubmitted,
		m.donationTransitions,
		m.itemTransitions,
		m.accountsPurged,
		m.jobRuns,
		m.realtimeEvents,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request in flight; call the returned func when done.
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// UnmatchedRoute is the path label shared by requests that matched no route.
const UnmatchedRoute = "unmatched"

func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	route := path
	if path != UnmatchedRoute {
		route = CanonicalPath(path)
	}
	method = strings.ToUpper(method)

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) DonationSubmitted(deliveryMethod string) {
	m.donationsSubmitted.WithLabelValues(deliveryMethod).Inc()
}

func (m *Metrics) DonationTransition(from, to string) {
	m.donationTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) FoodItemTransition(from, to string) {
	m.itemTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) AccountsPurged(n int64) {
	m.accountsPurged.Add(float64(n))
}

func (m *Metrics) JobRun(job string, success bool) {
	m.jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) RealtimeEvent(eventType string) {
	m.realtimeEvents.WithLabelValues(eventType).Inc()
}

var (
	donationNoSegment = regexp.MustCompile(`^DON-\d+$`)
	idParents         = map[string]string{
		"food-items":   ":itemID",
		"donors":       ":donorID",
		"verify-email": ":token",
	}
)

// CanonicalPath collapses identifiers in path so label cardinality stays
// bounded, e.g. /admin/donors/abc/donations -> /admin/donors/:donorID/donations.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}

	parts := strings.Split(trimmed, "/")
	if parts[0] == "media" {
		return "/media"
	}

	for i, part := range parts {
		if donationNoSegment.MatchString(part) {
			parts[i] = ":donationNo"
			continue
		}
		if i == 0 {
			continue
		}
		if placeholder, ok := idParents[parts[i-1]]; ok && part != "resend" {
			parts[i] = placeholder
		}
	}

	return "/" + strings.Join(parts, "/")
}

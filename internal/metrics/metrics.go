package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // GeocodeRequests counts geocoder lookups by outcome (ok, not_found, error)
    GeocodeRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "geocode_requests_total", Help: "Geocoder lookups by outcome."},
        []string{"outcome"},
    )
    // RoutingRequests counts routing provider calls by path and outcome
    RoutingRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "routing_requests_total", Help: "Routing provider requests by call path and outcome."},
        []string{"path", "outcome"},
    )
    // RouteRecomputes counts recomputation results: applied vs stale-dropped
    RouteRecomputes = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "route_recomputes_total", Help: "Route recomputations by result."},
        []string{"result"},
    )
    // GigLinkRetries counts reconcile-worker link attempts by outcome
    GigLinkRetries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "gig_link_retries_total", Help: "Tour-link reconcile attempts by outcome."},
        []string{"outcome"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(GeocodeRequests)
        Registry.MustRegister(RoutingRequests)
        Registry.MustRegister(RouteRecomputes)
        Registry.MustRegister(GigLinkRetries)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once

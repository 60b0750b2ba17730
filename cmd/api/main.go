package main

import (
    "bufio"
    "errors"
    "log"
    "net"
    "net/http"
    "strconv"
    "time"

    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "tourplan/internal/api"
    "tourplan/internal/config"
    "tourplan/internal/logger"
    "tourplan/internal/metrics"
)

func main() {
    _ = godotenv.Load()

    cfg, err := config.Load("config.yaml")
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }
    logger.Setup(cfg.LogFile)
    metrics.RegisterDefault()

    srvDeps, err := api.NewServer(cfg)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    mux := http.NewServeMux()

    // Stops
    mux.HandleFunc("/v1/stops", srvDeps.StopsHandler)
    mux.HandleFunc("/v1/stops/reorder", srvDeps.ReorderHandler)
    mux.HandleFunc("/v1/stops/", srvDeps.StopByIDHandler) // includes /commit

    // Route
    mux.HandleFunc("/v1/route", srvDeps.RouteHandler)
    mux.HandleFunc("/v1/route/stream", srvDeps.RouteStreamHandler)
    mux.HandleFunc("/v1/route/ws", srvDeps.RouteWSHandler)

    // Tours
    mux.HandleFunc("/v1/tours", srvDeps.ToursHandler)
    mux.HandleFunc("/v1/tours/", srvDeps.TourByIDHandler) // includes /default

    // Reports
    mux.HandleFunc("/v1/reports/itinerary", srvDeps.ItineraryHandler)

    // Health / metrics
    mux.HandleFunc("/healthz", srvDeps.HealthHandler)
    mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    addr := ":" + cfg.Port

    srv := &http.Server{
        Addr:              addr,
        Handler:           logMiddleware(mux),
        ReadHeaderTimeout: 5 * time.Second,
    }

    worker := srvDeps.NewReconcileWorker()
    worker.Start()

    logger.L().WithField("addr", addr).Info("API listening")
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}

type statusWriter struct {
    http.ResponseWriter
    status int
}

func (w *statusWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
    if f, ok := w.ResponseWriter.(http.Flusher); ok {
        f.Flush()
    }
}

// Hijack keeps the WebSocket upgrade working behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
        return hj.Hijack()
    }
    return nil, nil, errors.New("hijack not supported")
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        sw := &statusWriter{ResponseWriter: w, status: 200}
        next.ServeHTTP(sw, r)
        dur := time.Since(start)
        status := strconv.Itoa(sw.status)
        metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
        logger.L().WithFields(map[string]interface{}{
            "remote": r.RemoteAddr, "method": r.Method, "path": r.URL.Path,
            "status": sw.status, "duration": dur.String(),
        }).Info("request")
    })
}

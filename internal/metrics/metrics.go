// Package metrics exposes Prometheus collectors for HTTP traffic and
// object store calls.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docstore_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docstore_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	objectOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docstore_object_operations_total",
		Help: "Object store calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	objectDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docstore_object_operation_duration_seconds",
		Help:    "Object store call latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// InitMetrics registers the collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, objectOps, objectDuration)
	})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

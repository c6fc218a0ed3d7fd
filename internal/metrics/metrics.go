// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgroles/internal/orgcsv"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests broken down by route and result.",
	}, []string{"route", "result"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orgroles",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution of API requests.",
		Buckets: []float64{
			0.001, 0.005, 0.01,
			0.05, 0.1, 0.5,
			1, 5, 10,
		},
	}, []string{"route", "result"})

	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Structure import runs by outcome notice.",
	}, []string{"notice"})

	importRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Rows read by structure imports.",
	})

	importRowErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "import",
		Name:      "row_errors_total",
		Help:      "Rows skipped because they failed to import.",
	})

	importEntities = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "import",
		Name:      "entities_total",
		Help:      "Entities resolved by structure imports, by kind and outcome.",
	}, []string{"kind", "outcome"})

	exportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgroles",
		Subsystem: "export",
		Name:      "runs_total",
		Help:      "Structure exports by format.",
	}, []string{"format"})
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		result := strconv.Itoa(c.Writer.Status()/100) + "xx"
		apiRequests.WithLabelValues(route, result).Inc()
		apiLatency.WithLabelValues(route, result).Observe(time.Since(start).Seconds())
	}
}

func ObserveImport(rep orgcsv.Report) {
	importRuns.WithLabelValues(rep.Notice()).Inc()
	importRows.Add(float64(rep.Rows))
	importRowErrors.Add(float64(rep.Errors))
	observeCounts("created", rep.Created)
	observeCounts("reused", rep.Reused)
}

func observeCounts(outcome string, c orgcsv.Counts) {
	importEntities.WithLabelValues("company", outcome).Add(float64(c.Companies))
	importEntities.WithLabelValues("department", outcome).Add(float64(c.Departments))
	importEntities.WithLabelValues("job_role", outcome).Add(float64(c.JobRoles))
	importEntities.WithLabelValues("access_role", outcome).Add(float64(c.AccessRoles))
}

// ObserveImportFailure counts a run rejected before any row was read.
func ObserveImportFailure() {
	importRuns.WithLabelValues("error").Inc()
}

func ObserveExport(format string) {
	exportRuns.WithLabelValues(format).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

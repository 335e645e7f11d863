package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "isogap"

// Outcome labels
const (
	OutcomeResolved = "resolved"
	OutcomeUnknown  = "unknown"

	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultReadError       = "read_error"
	ResultWriteError      = "write_error"

	OperationLoad = "load"
	OperationSave = "save"
)

var (
	// NavigationEvents counts location changes by whether the location was
	// found in the route table
	NavigationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "navigation_events_total",
		Help:      "Location changes handled by the navigation controller.",
	}, []string{"outcome"})

	ViewRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_requests_total",
		Help:      "Views requested by page actions.",
	}, []string{"view"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Assessment submissions by domain and result.",
	}, []string{"domain", "result"})

	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Failed or malformed reads and failed writes of submission histories.",
	}, []string{"storage_key", "operation"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

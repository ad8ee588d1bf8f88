package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	gradingSubmitted      *prometheus.CounterVec
	gradingCompletedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studysys_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studysys_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studysys_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradingSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studysys_grading_submissions_total",
			Help: "Total number of answers accepted by the grading pipeline.",
		}, []string{"kind"})

		gradingCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studysys_grading_completed_total",
			Help: "Total number of grading results written back, by outcome.",
		}, []string{"kind", "outcome"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, gradingSubmitted, gradingCompletedTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradingSubmissions exposes the counter for accepted answers.
func GradingSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingSubmitted
}

// GradingCompleted exposes the counter for grading write-backs.
func GradingCompleted() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingCompletedTotal
}

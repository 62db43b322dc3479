// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements domain.MetricsRecorder on a private registry
type Recorder struct {
	registry  *prometheus.Registry
	sources   *prometheus.CounterVec
	reranks   *prometheus.CounterVec
	proposals *prometheus.CounterVec
}

// NewRecorder registers the dietcoach collectors plus the Go and process collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dietcoach",
			Name:      "product_source_total",
			Help:      "Product searches by source (REAL or MOCK).",
		}, []string{"source"}),
		reranks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dietcoach",
			Name:      "rerank_total",
			Help:      "AI rerank attempts by outcome.",
		}, []string{"outcome"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dietcoach",
			Name:      "budget_proposal_total",
			Help:      "Budget proposals by status and tier.",
		}, []string{"status", "tier"}),
	}

	r.registry.MustRegister(
		r.sources,
		r.reranks,
		r.proposals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveSource(source domain.Source) {
	r.sources.WithLabelValues(string(source)).Inc()
}

func (r *Recorder) ObserveRerank(outcome string) {
	r.reranks.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveProposal(status domain.ProposalStatus, tier int) {
	r.proposals.WithLabelValues(string(status), strconv.Itoa(tier)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

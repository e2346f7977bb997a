package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// faqSearches counts knowledge-base lookups by mode ("query" or "browse").
	faqSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_faq_searches_total",
			Help: "Total number of knowledge-base searches.",
		},
		[]string{"mode"},
	)

	// escalationMutations counts queue mutations by action and outcome
	// ("ok", "not_found", "invalid", "error").
	escalationMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_escalation_mutations_total",
			Help: "Total number of escalation queue mutations.",
		},
		[]string{"action", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(faqSearches, escalationMutations)
}

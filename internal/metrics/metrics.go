package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	FetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "survivor",
		Name:      "fetch_attempts_total",
		Help:      "Outbound data source calls by source and result.",
	}, []string{"source", "result"})

	PickRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "survivor",
		Name:      "pick_requests_total",
		Help:      "Pick requests by outcome.",
	}, []string{"result"})

	EntriesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "survivor",
		Name:      "entries_created_total",
		Help:      "Entries bought.",
	})

	Eliminations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "survivor",
		Name:      "eliminations_total",
		Help:      "Entries eliminated by week resolution.",
	})

	WeeksResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "survivor",
		Name:      "weeks_resolved_total",
		Help:      "Week resolutions applied.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FetchAttempts,
		PickRequests,
		EntriesCreated,
		Eliminations,
		WeeksResolved,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

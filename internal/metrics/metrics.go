package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convrisk_sounding_fetches_total",
			Help: "Total sounding fetch attempts by source and outcome",
		},
		[]string{"source", "station", "status"},
	)

	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convrisk_sounding_fetch_latency_seconds",
			Help:    "Sounding fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "station"},
	)

	SoundingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convrisk_soundings_ingested_total",
			Help: "Total soundings successfully stored",
		},
		[]string{"source", "station"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convrisk_analyses_total",
			Help: "Total parcel analyses by outcome",
		},
		[]string{"status"},
	)

	AnalysisCAPE = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "convrisk_latest_cape_joules_per_kg",
			Help: "CAPE from the most recent analysis per station",
		},
		[]string{"station"},
	)
)

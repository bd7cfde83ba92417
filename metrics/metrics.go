package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RatingsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_elo_ratings_fetches_total",
		Help: "Ratings page fetches by circuit and outcome.",
	}, []string{"circuit", "outcome"})

	RatingsFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tennis_elo_ratings_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing a ratings page.",
		Buckets: prometheus.DefBuckets,
	}, []string{"circuit"})

	RatingsSkippedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_elo_ratings_skipped_rows_total",
		Help: "Table rows dropped because a rating could not be parsed.",
	}, []string{"circuit"})

	MatchupsPriced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_elo_matchups_priced_total",
		Help: "Matchups priced by surface.",
	}, []string{"surface"})
)

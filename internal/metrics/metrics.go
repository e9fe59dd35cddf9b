package metrics

import (
	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	MEstimateRequests = stats.Int64("aoa/estimate/requests", "Estimate requests served", stats.UnitDimensionless)
	MEstimateLatency  = stats.Float64("aoa/estimate/latency", "Estimate latency", stats.UnitMilliseconds)
	MQueryRows        = stats.Int64("aoa/estimate/query_rows", "Query rows scored", stats.UnitDimensionless)
	MCacheHits        = stats.Int64("aoa/estimate/cache_hits", "Estimate responses served from cache", stats.UnitDimensionless)
)

var views = []*view.View{
	{
		Name:        "aoa/estimate/requests",
		Description: "Number of estimate requests",
		Measure:     MEstimateRequests,
		Aggregation: view.Count(),
	},
	{
		Name:        "aoa/estimate/latency",
		Description: "Latency distribution of estimate requests",
		Measure:     MEstimateLatency,
		Aggregation: view.Distribution(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	},
	{
		Name:        "aoa/estimate/query_rows",
		Description: "Total query rows scored",
		Measure:     MQueryRows,
		Aggregation: view.Sum(),
	},
	{
		Name:        "aoa/estimate/cache_hits",
		Description: "Number of cache hits",
		Measure:     MCacheHits,
		Aggregation: view.Count(),
	},
}

func RegisterViews() error {
	return view.Register(views...)
}

// NewExporter returns a prometheus exporter that also serves as the /metrics
// handler.
func NewExporter() (*prometheus.Exporter, error) {
	return prometheus.NewExporter(prometheus.Options{Namespace: "aoa"})
}

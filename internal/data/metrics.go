package data

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsPrefix = "powersimdata_"

// Retrieval sources.
const (
	SourceMemory = "memory"
	SourceLocal  = "local"
	SourceRemote = "remote"
)

var retrievalCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: metricsPrefix + "data_retrievals_total",
		Help: "Number of scenario files served, by where they were found",
	},
	[]string{"kind", "field", "source"},
)

var downloadedBytes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: metricsPrefix + "downloaded_bytes_total",
		Help: "Bytes downloaded from the data server",
	},
	[]string{"kind"},
)

var retrievalMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: metricsPrefix + "data_misses_total",
		Help: "Number of scenario files found neither locally nor on the server",
	},
	[]string{"kind", "field"},
)

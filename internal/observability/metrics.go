package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinksIngested counts links persisted, by source (manual, file).
	LinksIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshelf_links_ingested_total",
		Help: "Total number of links stored",
	}, []string{"source"})

	// LinksSkipped counts submitted links dropped as duplicates.
	LinksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshelf_links_skipped_total",
		Help: "Total number of submitted links skipped as duplicates",
	}, []string{"source"})

	// MetadataFetches counts metadata lookups by outcome (hit, miss, error).
	MetadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshelf_metadata_fetch_total",
		Help: "Total number of video metadata lookups",
	}, []string{"outcome"})

	// FilesRejected counts uploaded files refused, by reason.
	FilesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshelf_files_rejected_total",
		Help: "Total number of uploaded files rejected",
	}, []string{"reason"})

	// WebSocketBackpressureDrops counts notifications dropped because a client queue was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshelf_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"reason"})
)

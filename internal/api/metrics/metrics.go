// Package metrics defines all custom Prometheus metrics for the auction
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auction"

// ListingsCreatedTotal counts successfully created listings.
var ListingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	},
)

// ListingsRemovedTotal counts owner-initiated listing removals.
var ListingsRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_removed_total",
		Help:      "Total number of listings removed by their owner.",
	},
)

// BidsPlacedTotal counts accepted bids.
var BidsPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_placed_total",
		Help:      "Total number of bids accepted onto a listing.",
	},
)

// BidsRejectedTotal counts rejected bids.
// Label:
//   - reason: "below_threshold", "self_bid", "already_sold", "not_found", "invalid"
var BidsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_rejected_total",
		Help:      "Total number of bids rejected, labelled by reason.",
	},
	[]string{"reason"},
)

// AuctionsClosedTotal counts settled auctions.
var AuctionsClosedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auctions_closed_total",
		Help:      "Total number of auctions settled to a winning bidder.",
	},
)

// BidProcessingDuration measures how long a single bid placement takes,
// including validation and persistence.
// Label:
//   - outcome: "accepted" or "rejected"
var BidProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bid_processing_duration_seconds",
		Help:      "Duration of bid placement from request to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

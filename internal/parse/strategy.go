// Package parse turns a product-page URL into normalized product metadata.
// A dispatcher picks a per-source strategy by host-name substring; each
// strategy copes with its source's markup on a best-effort basis and may
// return a record with nil fields on partial success.
package parse

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
)

// Strategy converts a product-page URL into a normalized metadata record.
type Strategy interface {
	// Name identifies the source (used in metrics and logs).
	Name() string

	// Extract fetches whatever the source needs and returns the metadata.
	// A record with nil fields is partial success, not an error.
	Extract(ctx context.Context, pageURL string) (*domain.ProductMeta, error)
}

var extractionTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wishlist_extraction_total",
		Help: "Product metadata extraction attempts by source and outcome",
	},
	[]string{"source", "outcome"},
)

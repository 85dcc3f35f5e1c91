package parse

import (
	"context"
	"log/slog"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
)

// Parser is the front door of the extraction subsystem: cache lookup,
// strategy dispatch, extraction, metrics.
type Parser struct {
	dispatcher *Dispatcher
	cache      *Cache
	logger     *slog.Logger
}

// NewParser creates a parser. cache may be nil.
func NewParser(dispatcher *Dispatcher, cache *Cache, logger *slog.Logger) *Parser {
	return &Parser{dispatcher: dispatcher, cache: cache, logger: logger}
}

// Parse resolves product metadata for a URL through the matching strategy.
func (p *Parser) Parse(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	if meta, ok := p.cache.Get(ctx, pageURL); ok {
		return meta, nil
	}

	strategy := p.dispatcher.Select(pageURL)

	meta, err := strategy.Extract(ctx, pageURL)
	if err != nil {
		extractionTotal.WithLabelValues(strategy.Name(), "error").Inc()
		p.logger.WarnContext(ctx, "extraction failed",
			slog.String("source", strategy.Name()),
			slog.String("url", pageURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	extractionTotal.WithLabelValues(strategy.Name(), "ok").Inc()
	p.cache.Put(ctx, pageURL, meta)

	return meta, nil
}

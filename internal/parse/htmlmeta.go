package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
)

// ozonTitleSuffix is the marketing tail Ozon appends to its document titles.
const ozonTitleSuffix = "купить на OZON по низкой цене"

// htmlMetaStrategy extracts metadata from arbitrary HTML: Open Graph tags
// for title and image, schema.org ld+json blocks for the price. The generic
// fallback is this same heuristic with no suffix stripping.
type htmlMetaStrategy struct {
	name        string
	fetcher     *Fetcher
	titleSuffix string
}

// NewOzonStrategy scrapes Ozon product pages.
func NewOzonStrategy(fetcher *Fetcher) Strategy {
	return &htmlMetaStrategy{name: "ozon", fetcher: fetcher, titleSuffix: ozonTitleSuffix}
}

// NewYandexStrategy scrapes Yandex Market product pages.
func NewYandexStrategy(fetcher *Fetcher) Strategy {
	return &htmlMetaStrategy{name: "yandex", fetcher: fetcher}
}

// NewGenericStrategy applies the Open Graph / structured-data heuristic to
// any page the dispatcher couldn't classify.
func NewGenericStrategy(fetcher *Fetcher) Strategy {
	return &htmlMetaStrategy{name: "generic", fetcher: fetcher}
}

func (s *htmlMetaStrategy) Name() string { return s.name }

// Extract fetches the page and reads og:title (falling back to <title>),
// og:image, and the first ld+json block carrying an offers.price.
func (s *htmlMetaStrategy) Extract(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := &domain.ProductMeta{}

	title := docTitle(doc, s.titleSuffix)
	if title != "" {
		meta.Title = &title
	}

	// og:image only; no fallback, a missing tag leaves the field nil.
	if image, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && image != "" {
		meta.Image = &image
	}

	if price, ok := firstOfferPrice(doc); ok {
		formatted := price + " ₽"
		meta.Price = &formatted
	}

	return meta, nil
}

// docTitle prefers og:title and falls back to the <title> element. A known
// vendor suffix is stripped when configured.
func docTitle(doc *goquery.Document, suffix string) string {
	title, ok := doc.Find(`meta[property="og:title"]`).Attr("content")
	if !ok || title == "" {
		title = doc.Find("title").First().Text()
	}
	if suffix != "" {
		title = strings.TrimSuffix(strings.TrimSpace(title), suffix)
	}
	return strings.TrimSpace(title)
}

// ldJSONOffer is the slice of a schema.org product block this strategy
// cares about. Price arrives as either a JSON number or a string.
type ldJSONOffer struct {
	Offers struct {
		Price any `json:"price"`
	} `json:"offers"`
}

// firstOfferPrice scans every embedded ld+json block and takes the first one
// whose offers.price is present. Sites embed several such blocks and some
// are routinely malformed; individual parse failures are skipped, never
// propagated.
func firstOfferPrice(doc *goquery.Document) (string, bool) {
	var price string
	var found bool

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var block ldJSONOffer
		if err := json.Unmarshal([]byte(sel.Text()), &block); err != nil {
			return true // malformed block, try the next one
		}
		if p := priceString(block.Offers.Price); p != "" {
			price = p
			found = true
			return false
		}
		return true
	})

	return price, found
}

// priceString normalizes the price value of an offer block.
func priceString(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		if p == float64(int64(p)) {
			return fmt.Sprintf("%d", int64(p))
		}
		return fmt.Sprintf("%g", p)
	default:
		return ""
	}
}

package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httpclient"
)

// DefaultCardAPIURL is the public Wildberries card endpoint.
const DefaultCardAPIURL = "https://card.wb.ru/cards/v1/detail"

var (
	// ErrArticleNotFound means neither path pattern yielded a product id.
	ErrArticleNotFound = errors.New("wildberries: article id not found in url")

	// ErrProductNotFound means the card API returned no product record.
	ErrProductNotFound = errors.New("wildberries: product not found")
)

// The two URL shapes a product link comes in: catalog-style
// (/catalog/<id>/detail.aspx) and short product-style (/product/<id>).
var (
	catalogPathRe = regexp.MustCompile(`/catalog/(\d+)/`)
	productPathRe = regexp.MustCompile(`/product/(\d+)`)
)

// WildberriesStrategy resolves product metadata through the vendor's JSON
// card API instead of scraping HTML.
type WildberriesStrategy struct {
	client    *httpclient.Client
	apiURL    string
	userAgent string
}

// NewWildberriesStrategy creates the structured-API strategy. apiURL may be
// empty to use the public endpoint.
func NewWildberriesStrategy(client *httpclient.Client, apiURL, userAgent string) *WildberriesStrategy {
	if apiURL == "" {
		apiURL = DefaultCardAPIURL
	}
	return &WildberriesStrategy{client: client, apiURL: apiURL, userAgent: userAgent}
}

func (s *WildberriesStrategy) Name() string { return "wildberries" }

// cardResponse mirrors the card API payload: a nested object with a products
// list. Prices come in minor units ×100 (salePriceU).
type cardResponse struct {
	Data struct {
		Products []struct {
			ID         int64  `json:"id"`
			Name       string `json:"name"`
			SalePriceU int64  `json:"salePriceU"`
		} `json:"products"`
	} `json:"data"`
}

// Extract pulls the article id out of the URL, queries the card API, and
// normalizes name, price, and a synthesized CDN image URL.
func (s *WildberriesStrategy) Extract(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	articleID, err := articleFromURL(pageURL)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("appType", "1")
	q.Set("curr", "rub")
	q.Set("dest", "-1257786")
	q.Set("nm", strconv.FormatInt(articleID, 10))

	req, err := newGetRequest(ctx, s.apiURL+"?"+q.Encode(), s.userAgent)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("card api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("card api: status %d", resp.StatusCode)
	}

	var card cardResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPageBytes)).Decode(&card); err != nil {
		return nil, fmt.Errorf("card api: decode: %w", err)
	}
	if len(card.Data.Products) == 0 {
		return nil, ErrProductNotFound
	}

	product := card.Data.Products[0]
	title := product.Name
	price := fmt.Sprintf("%d ₽", product.SalePriceU/100)
	image := basketImageURL(articleID)

	return &domain.ProductMeta{
		Title: &title,
		Image: &image,
		Price: &price,
	}, nil
}

// articleFromURL tries the catalog-style pattern first, then product-style.
func articleFromURL(pageURL string) (int64, error) {
	for _, re := range []*regexp.Regexp{catalogPathRe, productPathRe} {
		if m := re.FindStringSubmatch(pageURL); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				return id, nil
			}
		}
	}
	return 0, ErrArticleNotFound
}

// basketImageURL synthesizes the product photo URL from the article id.
// This replicates the vendor CDN's sharding convention: the id's first digit
// selects the basket host, id/100000 the volume segment, id/1000 the part
// segment. Stable in practice but undocumented; coupled to the current CDN
// shape.
func basketImageURL(articleID int64) string {
	idStr := strconv.FormatInt(articleID, 10)
	return fmt.Sprintf(
		"https://basket-0%c.wbbasket.ru/vol%d/part%d/%d/images/big/1.webp",
		idStr[0], articleID/100000, articleID/1000, articleID,
	)
}

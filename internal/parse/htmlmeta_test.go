package parse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httpclient"
)

func testFetcher() *Fetcher {
	return NewFetcher(httpclient.New(httpclient.NoRetryConfig()), testUserAgent)
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTMLMetaExtract_OpenGraphAndPrice(t *testing.T) {
	srv := servePage(t, `<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="Widget Deluxe">
		<meta property="og:image" content="https://cdn.example.com/widget.jpg">
		<script type="application/ld+json">{"offers":{"price":999}}</script>
	</head><body></body></html>`)

	s := NewGenericStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, meta.Title)
	assert.Equal(t, "Widget Deluxe", *meta.Title)
	require.NotNil(t, meta.Image)
	assert.Equal(t, "https://cdn.example.com/widget.jpg", *meta.Image)
	require.NotNil(t, meta.Price)
	assert.Equal(t, "999 ₽", *meta.Price)
}

func TestHTMLMetaExtract_TitleFallback(t *testing.T) {
	srv := servePage(t, `<html><head><title>Plain Title</title></head><body></body></html>`)

	s := NewGenericStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, meta.Title)
	assert.Equal(t, "Plain Title", *meta.Title)
	// No og:image tag, no image fallback.
	assert.Nil(t, meta.Image)
	assert.Nil(t, meta.Price)
}

func TestHTMLMetaExtract_MalformedLdJSONSkipped(t *testing.T) {
	srv := servePage(t, `<html><head>
		<meta property="og:title" content="Widget">
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">{"offers":{}}</script>
		<script type="application/ld+json">{"offers":{"price":"1234.50"}}</script>
	</head><body></body></html>`)

	s := NewGenericStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, meta.Price)
	assert.Equal(t, "1234.50 ₽", *meta.Price)
}

func TestHTMLMetaExtract_OzonTitleSuffixStripped(t *testing.T) {
	srv := servePage(t, `<html><head>
		<meta property="og:title" content="Плед флисовый купить на OZON по низкой цене">
	</head><body></body></html>`)

	s := NewOzonStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, meta.Title)
	assert.Equal(t, "Плед флисовый", *meta.Title)
}

func TestHTMLMetaExtract_GenericKeepsSuffix(t *testing.T) {
	srv := servePage(t, `<html><head>
		<meta property="og:title" content="Плед купить на OZON по низкой цене">
	</head><body></body></html>`)

	s := NewGenericStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, meta.Title)
	assert.Equal(t, "Плед купить на OZON по низкой цене", *meta.Title)
}

func TestHTMLMetaExtract_EmptyPage(t *testing.T) {
	srv := servePage(t, `<html><head></head><body></body></html>`)

	s := NewGenericStrategy(testFetcher())
	meta, err := s.Extract(context.Background(), srv.URL)

	// Nothing extracted is still success; all fields stay nil.
	require.NoError(t, err)
	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.Image)
	assert.Nil(t, meta.Price)
}

func TestPriceString(t *testing.T) {
	assert.Equal(t, "999", priceString(float64(999)))
	assert.Equal(t, "999.5", priceString(999.5))
	assert.Equal(t, "1234", priceString(" 1234 "))
	assert.Equal(t, "", priceString(nil))
	assert.Equal(t, "", priceString(true))
}

func TestFetcher_ErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "status 404")
}

func TestFetcher_ErrorOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
)

type stubStrategy struct {
	name string
	meta *domain.ProductMeta
	err  error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	return s.meta, s.err
}

func testDispatcher() *Dispatcher {
	return NewDispatcher(
		&stubStrategy{name: "wildberries"},
		&stubStrategy{name: "ozon"},
		&stubStrategy{name: "yandex"},
		&stubStrategy{name: "generic"},
	)
}

func TestDispatcher_Select(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "wildberries catalog url",
			url:  "https://www.wildberries.ru/catalog/123456/detail.aspx",
			want: "wildberries",
		},
		{
			name: "ozon product url",
			url:  "https://www.ozon.ru/product/pled-flisovyy-456",
			want: "ozon",
		},
		{
			name: "yandex market url",
			url:  "https://market.yandex.ru/product--pled/789",
			want: "yandex",
		},
		{
			name: "yandex.ru url",
			url:  "https://yandex.ru/products/something",
			want: "yandex",
		},
		{
			name: "unknown shop falls back to generic",
			url:  "https://shop.example.com/item/1",
			want: "generic",
		},
		{
			name: "substring match anywhere in the url",
			url:  "https://redirect.example.com/?to=ozon.ru",
			want: "ozon",
		},
	}

	d := testDispatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Select(tt.url).Name())
		})
	}
}

func TestDispatcher_OrderedFirstMatchWins(t *testing.T) {
	d := testDispatcher()
	// Contains both "wildberries" and "ozon"; the earlier rule wins.
	got := d.Select("https://www.wildberries.ru/catalog/1/detail.aspx?from=ozon")
	assert.Equal(t, "wildberries", got.Name())
}

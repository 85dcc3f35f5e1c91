package parse

import "strings"

// Dispatcher selects the extraction strategy for a URL by substring
// containment over the raw URL text, first match wins. There is no scheme or
// host parsing: an unrelated URL that happens to contain one of the patterns
// matches too. That is intentional simplicity, not a bug.
type Dispatcher struct {
	rules    []rule
	fallback Strategy
}

type rule struct {
	patterns []string
	strategy Strategy
}

// NewDispatcher builds the fixed, ordered source table.
func NewDispatcher(wildberries, ozon, yandex, generic Strategy) *Dispatcher {
	return &Dispatcher{
		rules: []rule{
			{patterns: []string{"wildberries"}, strategy: wildberries},
			{patterns: []string{"ozon"}, strategy: ozon},
			{patterns: []string{"market.yandex", "yandex.ru"}, strategy: yandex},
		},
		fallback: generic,
	}
}

// Select returns the strategy for the URL, or the generic fallback.
func (d *Dispatcher) Select(pageURL string) Strategy {
	for _, r := range d.rules {
		for _, p := range r.patterns {
			if strings.Contains(pageURL, p) {
				return r.strategy
			}
		}
	}
	return d.fallback
}

// Package evidence defines the evidence bundle model and the providers
// that retrieve supporting material for a news claim from external
// services. Providers never return errors: a failed or timed-out lookup
// yields an unavailable bundle, which downstream scoring treats as a
// degraded but valid input.
package evidence

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// Item is a single piece of retrieved evidence
type Item struct {
	SourceLabel string   `json:"source_label"`
	SnippetText string   `json:"snippet_text"`
	URL         string   `json:"url,omitempty"`
	OriginScore *float64 `json:"origin_score,omitempty"` // provider-native relevance in [0,1]
}

// Bundle is what a provider returns for one query. Available is false when
// the provider failed or timed out; Items is empty in that case.
type Bundle struct {
	ProviderID  string `json:"provider_id"`
	Items       []Item `json:"items"`
	ItemCount   int    `json:"item_count"`
	Available   bool   `json:"available"`
	SourceCount int    `json:"source_count"` // distinct outlets/communities represented
}

// Set groups the bundles from all three provider variants
type Set struct {
	Discussion Bundle `json:"discussion"`
	Reference  Bundle `json:"reference"`
	News       Bundle `json:"news"`
}

// Provider retrieves evidence for a query. Fetch must honor ctx
// cancellation and must never panic or return an error; degraded lookups
// return an unavailable bundle.
type Provider interface {
	ID() string
	Fetch(ctx context.Context, query string) Bundle
}

// Unavailable returns the degraded bundle for a failed provider
func Unavailable(providerID string) Bundle {
	return Bundle{ProviderID: providerID, Items: []Item{}, Available: false}
}

// newBundle builds an available bundle, deriving ItemCount and SourceCount
func newBundle(providerID string, items []Item) Bundle {
	if items == nil {
		items = []Item{}
	}
	sources := make(map[string]struct{}, len(items))
	for _, item := range items {
		sources[item.SourceLabel] = struct{}{}
	}
	return Bundle{
		ProviderID:  providerID,
		Items:       items,
		ItemCount:   len(items),
		Available:   true,
		SourceCount: len(sources),
	}
}

// capItems bounds a slice to at most max items
func capItems(items []Item, max int) []Item {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

// stripHTML extracts plain text from a snippet that may carry markup.
// News API descriptions and RSS summaries frequently embed tags.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapseWhitespace(s)
	}
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
			b.WriteByte(' ')
		}
	}
	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate bounds snippet text so prompts stay a manageable size
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"truthscan/internal/config"
)

const referenceProviderID = "reference"

// maxReferencePages bounds how many page summaries we fetch per query;
// each summary is a separate API round trip.
const maxReferencePages = 5

// ReferenceProvider retrieves encyclopedia background for a claim from
// the MediaWiki API: an opensearch pass for candidate page titles, then
// the REST summary endpoint per page.
type ReferenceProvider struct {
	baseURL    string
	maxItems   int
	httpClient *http.Client
}

// NewReferenceProvider builds the provider from configuration
func NewReferenceProvider(cfg config.Wikipedia, maxItems int) *ReferenceProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		lang := cfg.Language
		if lang == "" {
			lang = "en"
		}
		baseURL = fmt.Sprintf("https://%s.wikipedia.org", lang)
	}
	return &ReferenceProvider{
		baseURL:  baseURL,
		maxItems: maxItems,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ID implements Provider
func (p *ReferenceProvider) ID() string {
	return referenceProviderID
}

// Fetch implements Provider. A page that fails to resolve (disambiguation,
// missing, transport error) is skipped rather than failing the bundle; the
// bundle is unavailable only when the search itself fails.
func (p *ReferenceProvider) Fetch(ctx context.Context, query string) Bundle {
	titles, err := p.searchTitles(ctx, query)
	if err != nil {
		log.Printf("reference provider unavailable: %v", err)
		return Unavailable(referenceProviderID)
	}

	limit := p.maxItems
	if limit > maxReferencePages {
		limit = maxReferencePages
	}

	items := make([]Item, 0, limit)
	for _, title := range titles {
		if len(items) >= limit {
			break
		}
		item, err := p.pageSummary(ctx, title)
		if err != nil {
			log.Printf("skipping reference page %q: %v", title, err)
			continue
		}
		items = append(items, item)
	}
	return newBundle(referenceProviderID, items)
}

// searchTitles runs an opensearch query and returns candidate page titles.
// The opensearch response is a positional JSON array:
// [query, [titles], [descriptions], [urls]].
func (p *ReferenceProvider) searchTitles(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(maxReferencePages))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia search returned status %d", resp.StatusCode)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse opensearch response: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("unexpected opensearch response shape")
	}

	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("failed to parse opensearch titles: %w", err)
	}
	return titles, nil
}

// pageSummaryResponse mirrors the REST summary fields we consume
type pageSummaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (p *ReferenceProvider) pageSummary(ctx context.Context, title string) (Item, error) {
	endpoint := p.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Item{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Item{}, fmt.Errorf("summary fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Item{}, fmt.Errorf("summary returned status %d", resp.StatusCode)
	}

	var summary pageSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return Item{}, fmt.Errorf("failed to parse summary: %w", err)
	}
	if summary.Extract == "" {
		return Item{}, fmt.Errorf("page has no extract")
	}

	return Item{
		SourceLabel: summary.Title,
		SnippetText: truncate(stripHTML(summary.Extract), 500),
		URL:         summary.ContentURLs.Desktop.Page,
	}, nil
}

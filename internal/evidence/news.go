package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"truthscan/internal/config"
)

const newsProviderID = "news"

// NewsProvider retrieves corroborating coverage from news aggregator APIs.
// It fans out to every configured backend concurrently and merges whatever
// came back; the bundle is unavailable only when every backend failed.
// The Google News RSS backend needs no API key, so the provider stays
// useful in a zero-credential demo setup.
type NewsProvider struct {
	cfg        config.News
	maxItems   int
	httpClient *http.Client
	feedParser *gofeed.Parser
}

// NewNewsProvider builds the provider from configuration
func NewNewsProvider(cfg config.News, maxItems int) *NewsProvider {
	httpClient := &http.Client{
		Timeout: 15 * time.Second,
	}
	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = "truthscan/1.0"

	return &NewsProvider{
		cfg:        cfg,
		maxItems:   maxItems,
		httpClient: httpClient,
		feedParser: parser,
	}
}

// ID implements Provider
func (p *NewsProvider) ID() string {
	return newsProviderID
}

type newsBackend struct {
	name   string
	search func(ctx context.Context, query string) ([]Item, error)
}

func (p *NewsProvider) backends() []newsBackend {
	var backends []newsBackend
	if p.cfg.NewsAPIKey != "" {
		backends = append(backends, newsBackend{"newsapi", p.searchNewsAPI})
	}
	if p.cfg.GNewsKey != "" {
		backends = append(backends, newsBackend{"gnews", p.searchGNews})
	}
	if p.cfg.RSSEnabled {
		backends = append(backends, newsBackend{"google-rss", p.searchGoogleRSS})
	}
	return backends
}

// Fetch implements Provider
func (p *NewsProvider) Fetch(ctx context.Context, query string) Bundle {
	backends := p.backends()
	if len(backends) == 0 {
		return Unavailable(newsProviderID)
	}

	results := make([][]Item, len(backends))
	var wg sync.WaitGroup
	for i, backend := range backends {
		wg.Add(1)
		go func(i int, backend newsBackend) {
			defer wg.Done()
			items, err := backend.search(ctx, query)
			if err != nil {
				log.Printf("news backend %s failed: %v", backend.name, err)
				return
			}
			results[i] = items
		}(i, backend)
	}
	wg.Wait()

	merged := mergeNewsItems(results)
	if merged == nil {
		return Unavailable(newsProviderID)
	}
	return newBundle(newsProviderID, capItems(merged, p.maxItems))
}

// mergeNewsItems combines backend results, dropping duplicate headlines.
// Returns nil when every backend failed; an empty non-nil slice means the
// backends answered but found nothing.
func mergeNewsItems(results [][]Item) []Item {
	anySucceeded := false
	seen := make(map[string]struct{})
	var merged []Item
	for _, items := range results {
		if items == nil {
			continue
		}
		anySucceeded = true
		for _, item := range items {
			key := strings.ToLower(strings.TrimSpace(item.SnippetText))
			if idx := strings.Index(key, " — "); idx > 0 {
				key = key[:idx]
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}
	if !anySucceeded {
		return nil
	}
	if merged == nil {
		merged = []Item{}
	}
	return merged
}

// newsAPIResponse mirrors the NewsAPI /v2/everything response slice we use
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (p *NewsProvider) searchNewsAPI(ctx context.Context, query string) ([]Item, error) {
	baseURL := p.cfg.NewsAPIURL
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2/everything"
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("apiKey", p.cfg.NewsAPIKey)

	var parsed newsAPIResponse
	if err := p.getJSON(ctx, baseURL+"?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Articles))
	for _, article := range parsed.Articles {
		items = append(items, newsItem(article.Source.Name, article.Title, article.Description, article.URL))
	}
	return items, nil
}

// gnewsResponse mirrors the GNews /v4/search response slice we use
type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (p *NewsProvider) searchGNews(ctx context.Context, query string) ([]Item, error) {
	baseURL := p.cfg.GNewsURL
	if baseURL == "" {
		baseURL = "https://gnews.io/api/v4/search"
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en")
	params.Set("token", p.cfg.GNewsKey)

	var parsed gnewsResponse
	if err := p.getJSON(ctx, baseURL+"?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Articles))
	for _, article := range parsed.Articles {
		items = append(items, newsItem(article.Source.Name, article.Title, article.Description, article.URL))
	}
	return items, nil
}

func (p *NewsProvider) searchGoogleRSS(ctx context.Context, query string) ([]Item, error) {
	baseURL := p.cfg.GoogleRSSURL
	if baseURL == "" {
		baseURL = "https://news.google.com/rss/search"
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	feed, err := p.feedParser.ParseURLWithContext(baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("google news rss failed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		// Google News titles read "Headline - Outlet"
		title, outlet := splitGoogleTitle(entry.Title)
		items = append(items, newsItem(outlet, title, entry.Description, entry.Link))
	}
	return items, nil
}

func splitGoogleTitle(title string) (headline, outlet string) {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return title, "Google News"
	}
	return title[:idx], title[idx+3:]
}

func newsItem(source, title, description, link string) Item {
	if source == "" {
		source = "Unknown"
	}
	snippet := stripHTML(title)
	if desc := truncate(stripHTML(description), 300); desc != "" {
		snippet += " — " + desc
	}
	return Item{
		SourceLabel: source,
		SnippetText: snippet,
		URL:         link,
	}
}

func (p *NewsProvider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

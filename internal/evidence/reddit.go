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

	"golang.org/x/oauth2/clientcredentials"

	"truthscan/internal/config"
)

const discussionProviderID = "discussion"

// DiscussionProvider retrieves public discussion around a claim from
// Reddit. With API credentials configured it uses the OAuth endpoint;
// without them it falls back to the public JSON search, which is rate
// limited more aggressively but needs no key.
type DiscussionProvider struct {
	baseURL    string
	userAgent  string
	maxItems   int
	httpClient *http.Client
}

// NewDiscussionProvider builds the provider from configuration
func NewDiscussionProvider(cfg config.Reddit, maxItems int) *DiscussionProvider {
	p := &DiscussionProvider{
		userAgent: cfg.UserAgent,
		maxItems:  maxItems,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		authURL := cfg.AuthURL
		if authURL == "" {
			authURL = "https://www.reddit.com/api/v1/access_token"
		}
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     authURL,
		}
		p.httpClient = creds.Client(context.Background())
		p.httpClient.Timeout = 15 * time.Second
		p.baseURL = "https://oauth.reddit.com"
	} else {
		p.baseURL = "https://www.reddit.com"
	}

	if cfg.BaseURL != "" {
		p.baseURL = cfg.BaseURL
	}

	return p
}

// ID implements Provider
func (p *DiscussionProvider) ID() string {
	return discussionProviderID
}

// redditListing mirrors the slice of the Reddit search response we consume
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Subreddit   string  `json:"subreddit"`
				Score       float64 `json:"score"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
				SelfText    string  `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch implements Provider. Search failures are absorbed into an
// unavailable bundle.
func (p *DiscussionProvider) Fetch(ctx context.Context, query string) Bundle {
	items, err := p.search(ctx, query)
	if err != nil {
		log.Printf("discussion provider unavailable: %v", err)
		return Unavailable(discussionProviderID)
	}
	return newBundle(discussionProviderID, capItems(items, p.maxItems))
}

func (p *DiscussionProvider) search(ctx context.Context, query string) ([]Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(p.maxItems))
	params.Set("sort", "relevance")
	params.Set("t", "year")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit search returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to parse reddit response: %w", err)
	}

	items := make([]Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		snippet := post.Title
		if post.SelfText != "" {
			snippet += " — " + truncate(stripHTML(post.SelfText), 300)
		}
		score := normalizePostScore(post.Score)
		items = append(items, Item{
			SourceLabel: "r/" + post.Subreddit,
			SnippetText: snippet,
			URL:         "https://www.reddit.com" + post.Permalink,
			OriginScore: &score,
		})
	}
	return items, nil
}

// normalizePostScore maps a raw Reddit post score into [0,1]. 500 upvotes
// or more counts as maximally relevant.
func normalizePostScore(score float64) float64 {
	if score <= 0 {
		return 0
	}
	if score >= 500 {
		return 1
	}
	return score / 500
}

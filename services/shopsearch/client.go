// Package shopsearch is a thin client for the SerpAPI search backend: the
// google_shopping engine for product listings and the plain google engine
// for site-restricted organic results.
package shopsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	defaultTimeout = 30 * time.Second
	resultCount    = "20"
)

// ShoppingItem is a single raw result from the shopping engine. Price stays
// a display string ("$19.99", "From $15.00") until the aggregator extracts a
// numeric value from it.
type ShoppingItem struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Source      string `json:"source"`
	Link        string `json:"link"`
	ProductLink string `json:"product_link"`
	Thumbnail   string `json:"thumbnail"`
}

// BestLink prefers the product page over the generic result link.
func (i ShoppingItem) BestLink() string {
	if i.ProductLink != "" {
		return i.ProductLink
	}
	return i.Link
}

// OrganicResult is a single organic web-search hit.
type OrganicResult struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Snippet   string `json:"snippet"`
	Thumbnail string `json:"thumbnail"`
}

// Client calls the SerpAPI HTTP endpoint. One Client is safe for concurrent
// use; rate limiting between calls is the caller's responsibility.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// New constructs a client. A nil http.Client gets a default with a
// transport-level timeout; hung calls fail there rather than blocking.
func New(apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		httpc:   httpc,
	}
}

type searchResponse struct {
	ShoppingResults []ShoppingItem  `json:"shopping_results"`
	OrganicResults  []OrganicResult `json:"organic_results"`
	Error           string          `json:"error"`
}

// Shopping runs a google_shopping query with US/English locale hints.
func (c *Client) Shopping(ctx context.Context, query string) ([]ShoppingItem, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("gl", "us")
	params.Set("hl", "en")
	params.Set("num", resultCount)

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.ShoppingResults, nil
}

// Web runs a plain google query and returns organic results. Queries may
// carry site: restriction operators.
func (c *Client) Web(ctx context.Context, query string) ([]OrganicResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", resultCount)

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.OrganicResults, nil
}

func (c *Client) search(ctx context.Context, params url.Values) (*searchResponse, error) {
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search backend error: %s", parsed.Error)
	}
	return &parsed, nil
}

package retailers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/net/html"
)

const (
	fetchTimeout  = 30 * time.Second
	fetchAttempts = 3
	fetchBaseWait = 2 * time.Second
	fetchMaxWait  = 30 * time.Second

	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var priceTokenRe = regexp.MustCompile(`\d+\.?\d*`)

// extractPrice pulls the first numeric token out of a price string
// ("$29.98 USD" -> 29.98). Returns nil when no number is present.
func extractPrice(s string) *float64 {
	if s == "" {
		return nil
	}
	match := priceTokenRe.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// fetchDocument GETs a storefront page and parses it. Blocking statuses
// (403/429) and server errors are retried with jittered exponential backoff
// up to fetchAttempts before giving up; other client errors fail immediately.
func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*html.Node, error) {
	var doc *html.Node

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", browserUserAgent)
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "en-US,en;q=0.5")

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", pageURL, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusForbidden,
				resp.StatusCode == http.StatusTooManyRequests,
				resp.StatusCode >= 500:
				return fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
			case resp.StatusCode >= 400:
				return retry.Unrecoverable(fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode))
			}

			parsed, err := html.Parse(resp.Body)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("parse %s: %w", pageURL, err))
			}
			doc = parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(fetchAttempts),
		retry.Delay(fetchBaseWait),
		retry.MaxDelay(fetchMaxWait),
		retry.MaxJitter(time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

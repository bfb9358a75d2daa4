package retailers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/html"

	"dealhound/models"
)

const arrowVideoBaseURL = "https://www.arrowfilms.com"

// ArrowVideoMatcher scrapes Arrow Films. The storefront is a custom React
// frontend, so the matcher walks raw product links rather than a stable card
// structure and reads price/thumbnail from the nearest wrapping element.
type ArrowVideoMatcher struct {
	baseURL string
	httpc   *http.Client
}

func NewArrowVideoMatcher(client *http.Client) *ArrowVideoMatcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &ArrowVideoMatcher{baseURL: arrowVideoBaseURL, httpc: client}
}

func (m *ArrowVideoMatcher) Name() string { return "Arrow Video" }

func (m *ArrowVideoMatcher) Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", m.baseURL, url.QueryEscape(title))

	doc, err := fetchDocument(ctx, m.httpc, searchURL)
	if err != nil {
		return nil, err
	}

	links := findAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && containsHref(n, "/product/")
	})
	if len(links) > 20 {
		links = links[:20]
	}

	seen := make(map[string]struct{})
	var results []models.RetailerListing
	for _, link := range links {
		productURL := resolveHref(m.baseURL, attrVal(link, "href"))
		if _, dup := seen[productURL]; dup {
			continue
		}
		seen[productURL] = struct{}{}

		productTitle := nodeText(link)
		if len(productTitle) < 3 {
			continue
		}

		card := ancestorOf(link, "div", "article", "li")

		results = append(results, models.RetailerListing{
			Title:       productTitle,
			Price:       cardPrice(card, "price"),
			URL:         productURL,
			Retailer:    m.Name(),
			EditionType: "Arrow Video",
			Thumbnail:   cardThumbnail(card),
		})
	}
	return results, nil
}

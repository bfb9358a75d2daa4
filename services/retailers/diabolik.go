package retailers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"dealhound/models"
)

const diabolikBaseURL = "https://www.diabolikdvd.com"

// DiabolikDVDMatcher scrapes Diabolik DVD, a Magento store that aggregates
// boutique releases from many labels. Because it carries everything, the
// edition type is inferred from the listing title.
type DiabolikDVDMatcher struct {
	baseURL string
	httpc   *http.Client
}

func NewDiabolikDVDMatcher(client *http.Client) *DiabolikDVDMatcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &DiabolikDVDMatcher{baseURL: diabolikBaseURL, httpc: client}
}

func (m *DiabolikDVDMatcher) Name() string { return "Diabolik DVD" }

func (m *DiabolikDVDMatcher) Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error) {
	searchURL := fmt.Sprintf("%s/catalogsearch/result/?q=%s", m.baseURL, url.QueryEscape(title))

	doc, err := fetchDocument(ctx, m.httpc, searchURL)
	if err != nil {
		return nil, err
	}

	items := findAll(doc, func(n *html.Node) bool {
		return classContains(n, "product-item")
	})
	if len(items) > 15 {
		items = items[:15]
	}

	var results []models.RetailerListing
	for _, item := range items {
		titleLink := findFirst(item, func(n *html.Node) bool {
			return n.Data == "a" && (classContains(n, "product-item-link") || classContains(n, "product-name"))
		})
		if titleLink == nil {
			continue
		}
		productTitle := nodeText(titleLink)
		if productTitle == "" {
			continue
		}

		img := findFirst(item, func(n *html.Node) bool {
			return n.Data == "img" && classContains(n, "product-image")
		})
		thumbnail := thumbnailSrc(img)
		if thumbnail == "" {
			thumbnail = cardThumbnail(item)
		}

		results = append(results, models.RetailerListing{
			Title:       productTitle,
			Price:       cardPrice(item, "price", "regular-price"),
			URL:         resolveHref(m.baseURL, attrVal(titleLink, "href")),
			Retailer:    m.Name(),
			EditionType: editionFromTitle(productTitle),
			Thumbnail:   thumbnail,
		})
	}
	return results, nil
}

// editionFromTitle maps well-known label names in an aggregator listing to
// the label they belong to.
func editionFromTitle(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "criterion"):
		return "Criterion Collection"
	case strings.Contains(lower, "arrow"):
		return "Arrow Video"
	case strings.Contains(lower, "shout"), strings.Contains(lower, "scream factory"):
		return "Scream Factory"
	case strings.Contains(lower, "kino"):
		return "Kino Lorber"
	case strings.Contains(lower, "vinegar"):
		return "Vinegar Syndrome"
	default:
		return "Boutique Release"
	}
}

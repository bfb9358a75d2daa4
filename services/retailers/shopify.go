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

// shopifyGridMatcher handles Shopify storefronts whose search results are a
// grid of /products/ anchors (Severin, Grindhouse). The title lives in the
// anchor text or the product image's alt attribute.
type shopifyGridMatcher struct {
	name        string
	baseURL     string
	editionType string
	httpc       *http.Client
}

func (m *shopifyGridMatcher) Name() string { return m.name }

func (m *shopifyGridMatcher) Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&type=product", m.baseURL, url.QueryEscape(title))

	doc, err := fetchDocument(ctx, m.httpc, searchURL)
	if err != nil {
		return nil, err
	}

	links := findAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && containsHref(n, "/products/")
	})
	if len(links) > 15 {
		links = links[:15]
	}

	seen := make(map[string]struct{})
	var results []models.RetailerListing
	for _, link := range links {
		href := attrVal(link, "href")
		// Collection pages link through /collections/.../products/; skip them
		// so each product is reported once at its canonical URL.
		if strings.Contains(href, "/collections/") {
			continue
		}
		productURL := resolveHref(m.baseURL, href)
		if _, dup := seen[productURL]; dup {
			continue
		}
		seen[productURL] = struct{}{}

		img := findFirst(link, func(n *html.Node) bool { return n.Data == "img" })

		productTitle := nodeText(link)
		if len(productTitle) < 3 && img != nil {
			productTitle = strings.TrimSpace(attrVal(img, "alt"))
		}
		if len(productTitle) < 3 {
			continue
		}

		card := ancestorOf(link, "div", "article", "li")
		thumbnail := thumbnailSrc(img)
		if thumbnail == "" {
			thumbnail = cardThumbnail(card)
		}

		results = append(results, models.RetailerListing{
			Title:       productTitle,
			Price:       cardPrice(card, "price", "money"),
			URL:         productURL,
			Retailer:    m.name,
			EditionType: m.editionType,
			Thumbnail:   thumbnail,
		})
	}
	return results, nil
}

// NewSeverinFilmsMatcher scrapes the Severin Films store.
func NewSeverinFilmsMatcher(client *http.Client) Matcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &shopifyGridMatcher{
		name:        "Severin Films",
		baseURL:     "https://severinfilms.com",
		editionType: "Severin Films",
		httpc:       client,
	}
}

// NewGrindhouseVideoMatcher scrapes the Grindhouse Video store, an
// aggregator that stocks many labels.
func NewGrindhouseVideoMatcher(client *http.Client) Matcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &shopifyGridMatcher{
		name:        "Grindhouse Video",
		baseURL:     "https://www.grindhousevideo.com",
		editionType: "Boutique Release",
		httpc:       client,
	}
}

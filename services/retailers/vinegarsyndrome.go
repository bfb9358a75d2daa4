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

const vinegarSyndromeBaseURL = "https://vinegarsyndrome.com"

// VinegarSyndromeMatcher scrapes the Vinegar Syndrome Shopify store. Search
// results render as product cards with a title element, a product link and a
// price element inside each card.
type VinegarSyndromeMatcher struct {
	baseURL string
	httpc   *http.Client
}

func NewVinegarSyndromeMatcher(client *http.Client) *VinegarSyndromeMatcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &VinegarSyndromeMatcher{baseURL: vinegarSyndromeBaseURL, httpc: client}
}

func (m *VinegarSyndromeMatcher) Name() string { return "Vinegar Syndrome" }

func (m *VinegarSyndromeMatcher) Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&type=product", m.baseURL, url.QueryEscape(title))

	doc, err := fetchDocument(ctx, m.httpc, searchURL)
	if err != nil {
		return nil, err
	}

	cards := findAll(doc, func(n *html.Node) bool {
		return classContains(n, "product-card") || classContains(n, "product-item") ||
			attrVal(n, "data-product-card") != ""
	})
	if len(cards) > 10 {
		cards = cards[:10]
	}

	var results []models.RetailerListing
	for _, card := range cards {
		titleEl := findFirst(card, func(n *html.Node) bool {
			return classContains(n, "product-card__title") || classContains(n, "product-title")
		})
		if titleEl == nil {
			continue
		}
		productTitle := nodeText(titleEl)
		if productTitle == "" {
			continue
		}

		link := findFirst(card, func(n *html.Node) bool {
			return n.Data == "a" && containsHref(n, "/products/")
		})
		if link == nil {
			continue
		}

		results = append(results, models.RetailerListing{
			Title:       productTitle,
			Price:       cardPrice(card, "price"),
			URL:         resolveHref(m.baseURL, attrVal(link, "href")),
			Retailer:    m.Name(),
			EditionType: "Vinegar Syndrome",
			Thumbnail:   cardThumbnail(card),
		})
	}
	return results, nil
}

func containsHref(n *html.Node, fragment string) bool {
	href := attrVal(n, "href")
	return href != "" && strings.Contains(href, fragment)
}

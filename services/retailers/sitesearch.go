package retailers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dealhound/models"
	"dealhound/services/shopsearch"
)

// WebSearcher is the general web-search backend used to reach sites that
// reject direct automated fetches.
type WebSearcher interface {
	Web(ctx context.Context, query string) ([]shopsearch.OrganicResult, error)
}

// protectedSites maps retailer domains that block direct scraping to the
// label whose store they are.
var protectedSites = []struct {
	domain string
	label  string
}{
	{"criterion.com", "Criterion Collection"},
	{"kinolorber.com", "Kino Lorber"},
	{"shoutfactory.com", "Shout Factory"},
	{"shop.bfi.org.uk", "BFI"},
	{"eurekavideo.co.uk", "Eureka/Masters of Cinema"},
	{"88films.co.uk", "88 Films"},
}

// maxTitleVariants bounds the OR-expansion of title variants so queries
// stay under the backend's length limits.
const maxTitleVariants = 4

var snippetPriceRe = regexp.MustCompile(`\$(\d+\.?\d*)`)

// ProtectedSiteSearcher finds products on blocked storefronts by running a
// single site-restricted query against a general web-search backend. Prices
// come opportunistically from result snippets and are frequently absent.
type ProtectedSiteSearcher struct {
	searcher WebSearcher
}

func NewProtectedSiteSearcher(searcher WebSearcher) *ProtectedSiteSearcher {
	return &ProtectedSiteSearcher{searcher: searcher}
}

// Search builds one OR-of-sites, OR-of-titles query and maps organic
// results back to retailer listings.
func (p *ProtectedSiteSearcher) Search(ctx context.Context, title string, year int, alternativeTitles []string) ([]models.RetailerListing, error) {
	query := p.buildQuery(title, year, alternativeTitles)

	organic, err := p.searcher.Web(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("protected-site search: %w", err)
	}

	var results []models.RetailerListing
	for _, item := range organic {
		if item.Link == "" {
			continue
		}

		retailer := "Boutique Retailer"
		editionType := "Boutique Release"
		for _, site := range protectedSites {
			if strings.Contains(item.Link, site.domain) {
				retailer = site.label
				editionType = site.label
				break
			}
		}

		var price *float64
		if m := snippetPriceRe.FindStringSubmatch(item.Snippet); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				price = &v
			}
		}

		results = append(results, models.RetailerListing{
			Title:       item.Title,
			Price:       price,
			URL:         item.Link,
			Retailer:    retailer,
			EditionType: editionType,
			Thumbnail:   item.Thumbnail,
		})
	}
	return results, nil
}

func (p *ProtectedSiteSearcher) buildQuery(title string, year int, alternativeTitles []string) string {
	sites := make([]string, 0, len(protectedSites))
	for _, site := range protectedSites {
		sites = append(sites, "site:"+site.domain)
	}
	siteQuery := strings.Join(sites, " OR ")

	allTitles := []string{title}
	for _, alt := range alternativeTitles {
		if strings.EqualFold(alt, title) || containsTitle(allTitles, alt) {
			continue
		}
		allTitles = append(allTitles, alt)
	}
	if len(allTitles) > maxTitleVariants {
		allTitles = allTitles[:maxTitleVariants]
	}

	var titleQuery string
	if len(allTitles) > 1 {
		quoted := make([]string, 0, len(allTitles))
		for _, t := range allTitles {
			quoted = append(quoted, `"`+t+`"`)
		}
		titleQuery = "(" + strings.Join(quoted, " OR ") + ")"
	} else {
		titleQuery = `"` + title + `"`
	}

	if year > 0 {
		return fmt.Sprintf("%s %d blu-ray (%s)", titleQuery, year, siteQuery)
	}
	return fmt.Sprintf("%s blu-ray (%s)", titleQuery, siteQuery)
}

func containsTitle(titles []string, candidate string) bool {
	for _, t := range titles {
		if strings.EqualFold(t, candidate) {
			return true
		}
	}
	return false
}

// Package retailers searches boutique home-video storefronts directly.
// Each retailer gets its own matcher tied to that site's page shape; all
// matchers are best-effort and a dead or redesigned site degrades to zero
// results for that source, never an aggregate failure.
package retailers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"

	"dealhound/models"
)

// Matcher turns a title+year query into candidate listings for one retailer.
type Matcher interface {
	Name() string
	Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error)
}

// Searcher fans a query out across all registered matchers plus the
// protected-site fallback, then applies the cross-cutting title, price and
// year filters to the merged results.
type Searcher struct {
	matchers []Matcher
	site     *ProtectedSiteSearcher
}

// NewSearcher builds a Searcher with the default retailer set. The
// protected-site searcher is optional (nil when no web-search backend is
// configured).
func NewSearcher(client *http.Client, site *ProtectedSiteSearcher) *Searcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Searcher{
		matchers: []Matcher{
			NewVinegarSyndromeMatcher(client),
			NewArrowVideoMatcher(client),
			NewSeverinFilmsMatcher(client),
			NewGrindhouseVideoMatcher(client),
			NewDiabolikDVDMatcher(client),
		},
		site: site,
	}
}

// WithMatchers replaces the matcher set; used by tests and by callers that
// want a narrower retailer list.
func (s *Searcher) WithMatchers(matchers ...Matcher) *Searcher {
	s.matchers = matchers
	return s
}

// SearchAll queries every matcher concurrently, merges results in matcher
// registration order, then filters. acceptTitles is the full set of title
// variants (original + alternatives + resolved search title) used by the
// title-match filter; maxPrice of 0 disables the price filter.
func (s *Searcher) SearchAll(ctx context.Context, title string, year int, acceptTitles []string, maxPrice float64) []models.RetailerListing {
	start := time.Now()

	// Each matcher writes its own slot so the merge always follows matcher
	// registration order regardless of which goroutine finished first. The
	// merge order feeds the first-seen URL dedup downstream, so it has to be
	// stable across runs.
	batches := make([][]models.RetailerListing, len(s.matchers))
	var wg conc.WaitGroup
	for i, m := range s.matchers {
		i, m := i, m
		wg.Go(func() {
			results, err := m.Search(ctx, title, year)
			if err != nil {
				log.Printf("[retailers] %s search failed: %v", m.Name(), err)
				return
			}
			log.Printf("[retailers] %s: %d results for %q", m.Name(), len(results), title)
			batches[i] = results
		})
	}
	wg.Wait()

	var merged []models.RetailerListing
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	if s.site != nil {
		siteResults, err := s.site.Search(ctx, title, year, acceptTitles)
		if err != nil {
			log.Printf("[retailers] protected-site search failed: %v", err)
		} else {
			merged = append(merged, siteResults...)
		}
	}

	if len(acceptTitles) == 0 {
		acceptTitles = []string{title}
	}

	var filtered []models.RetailerListing
	for _, r := range merged {
		if !TitleMatches(r.Title, acceptTitles) {
			continue
		}
		if maxPrice > 0 && r.Price != nil && *r.Price > maxPrice {
			continue
		}
		if !yearPlausible(r.Title, year) {
			continue
		}
		filtered = append(filtered, r)
	}

	log.Printf("[retailers] %d/%d results match %q after filtering (%.1fs)",
		len(filtered), len(merged), title, time.Since(start).Seconds())
	return filtered
}

// Package deals is the aggregator: it turns a film into a list of
// price-qualified, edition-qualified deals by combining the shopping search,
// the retailer matchers, the classifier and the cache. Every external source
// is best-effort; a film whose search fails outright yields an empty list,
// never an error.
package deals

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dealhound/models"
	"dealhound/services/advisor"
	"dealhound/services/classifier"
	"dealhound/services/salewindow"
	"dealhound/services/shopsearch"
	"dealhound/services/titles"
)

const (
	defaultMaxPrice   = 20.0
	defaultRPM        = 30
	maxSearchQueries  = 5
	maxRefineQueries  = 2
	maxBatchValidated = 10
)

// CacheStore is the sale-period-aware result cache.
type CacheStore interface {
	Get(movieTitle string, maxPrice float64) ([]models.Deal, bool, error)
	Set(movieTitle string, maxPrice float64, deals []models.Deal, ttl time.Duration) error
}

// ShoppingSearcher runs Google Shopping queries.
type ShoppingSearcher interface {
	Shopping(ctx context.Context, query string) ([]shopsearch.ShoppingItem, error)
}

// RetailerSearcher fans out across the boutique storefront matchers.
type RetailerSearcher interface {
	SearchAll(ctx context.Context, title string, year int, acceptTitles []string, maxPrice float64) []models.RetailerListing
}

// Advisor is the optional language-model service. All calls are advisory;
// errors degrade to "no advice".
type Advisor interface {
	Enabled() bool
	GenerateSearchQueries(ctx context.Context, film models.Film) (advisor.QueryExpansion, error)
	DetectBundles(ctx context.Context, film models.Film) (advisor.BundleQueries, error)
	ValidateMovieMatch(ctx context.Context, film models.Film, productTitle string) (advisor.MatchValidation, error)
	BatchValidateResults(ctx context.Context, film models.Film, productTitles []string) (advisor.BatchValidation, error)
	SuggestSearchRefinements(ctx context.Context, film models.Film, resultCount int, originalQuery string) (advisor.Refinements, error)
}

// Config wires a Finder. Shopping and Classifier are required; Cache,
// Retailers and Advisor may be nil, disabling the corresponding step.
type Config struct {
	Shopping          ShoppingSearcher
	Retailers         RetailerSearcher
	Cache             CacheStore
	Advisor           Advisor
	Classifier        *classifier.Classifier
	MaxPrice          float64
	RequestsPerMinute int
}

// Finder searches deals for one film at a time.
type Finder struct {
	shopping   ShoppingSearcher
	retailers  RetailerSearcher
	cache      CacheStore
	advisor    Advisor
	classifier *classifier.Classifier
	maxPrice   float64
	delay      time.Duration

	// Injectable clock and sleeper so tests run instantly.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewFinder(cfg Config) *Finder {
	maxPrice := cfg.MaxPrice
	if maxPrice <= 0 {
		maxPrice = defaultMaxPrice
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}
	return &Finder{
		shopping:   cfg.Shopping,
		retailers:  cfg.Retailers,
		cache:      cfg.Cache,
		advisor:    cfg.Advisor,
		classifier: cfg.Classifier,
		maxPrice:   maxPrice,
		delay:      time.Minute / time.Duration(rpm),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// MaxPrice returns the configured price ceiling.
func (f *Finder) MaxPrice() float64 {
	return f.maxPrice
}

// Search finds deals for one film. skipCache forces a fresh search even
// when a valid cache entry exists.
func (f *Finder) Search(ctx context.Context, film *models.Film, skipCache bool) []models.Deal {
	ttl := time.Duration(salewindow.CacheTTLHours(f.now())) * time.Hour
	if active, name := salewindow.Active(f.now()); active {
		log.Printf("[deals] sale period active (%s), using fresh searches", name)
	}

	if !skipCache && ttl > 0 && f.cache != nil {
		cached, ok, err := f.cache.Get(film.Title, f.maxPrice)
		if err != nil {
			log.Printf("[deals] cache read failed for %q: %v", film.Title, err)
		} else if ok {
			log.Printf("[deals] cache hit for %q: %d deals", film.Title, len(cached))
			return cached
		}
	}

	var found []models.Deal

	queries := f.searchQueries(ctx, film)
	primaryQuery := queries[0]

	for i, q := range queries {
		log.Printf("[deals] shopping search (%d/%d): %s", i+1, len(queries), q)
		items, err := f.shopping.Shopping(ctx, q)
		if err != nil {
			log.Printf("[deals] shopping search failed for %q: %v", film.Title, err)
		} else {
			before := len(found)
			for _, item := range items {
				if deal := f.processItem(ctx, film, item); deal != nil {
					found = append(found, *deal)
				}
			}
			log.Printf("[deals] shopping query %d: %d deals", i+1, len(found)-before)
		}
		if i < len(queries)-1 {
			f.sleep(f.delay)
		}
	}

	searchTitle := titles.Resolve(film)
	acceptTitles := acceptableTitles(film, searchTitle)

	if f.retailers != nil {
		listings := f.retailers.SearchAll(ctx, searchTitle, film.Year, acceptTitles, f.maxPrice)
		converted := f.convertListings(film, listings)
		found = append(found, converted...)
		log.Printf("[deals] boutique retailers: %d deals", len(converted))
	}

	seen := make(map[string]struct{})
	found = dedupeByURL(found, seen)

	if len(found) < 2 && f.advisorEnabled() {
		log.Printf("[deals] few results (%d) for %q, trying search refinement", len(found), film.Title)
		for _, deal := range f.refineSearch(ctx, film, len(found), primaryQuery) {
			if _, dup := seen[deal.URL]; dup {
				continue
			}
			seen[deal.URL] = struct{}{}
			found = append(found, deal)
		}
	}

	if len(found) > 0 && f.advisorEnabled() {
		found = f.batchValidate(ctx, film, found)
	}

	if ttl > 0 && len(found) > 0 && f.cache != nil {
		if err := f.cache.Set(film.Title, f.maxPrice, found, ttl); err != nil {
			log.Printf("[deals] cache write failed for %q: %v", film.Title, err)
		} else {
			log.Printf("[deals] cached %d deals for %q (ttl %s)", len(found), film.Title, ttl)
		}
	}

	f.sleep(f.delay)
	return found
}

func (f *Finder) advisorEnabled() bool {
	return f.advisor != nil && f.advisor.Enabled()
}

// searchQueries returns the shopping queries for a film: the single
// templated query, or up to five advisor-expanded title and bundle queries.
func (f *Finder) searchQueries(ctx context.Context, film *models.Film) []string {
	defaultQuery := buildQuery(titles.Resolve(film))

	if !f.advisorEnabled() {
		return []string{defaultQuery}
	}

	var queries []string

	expansion, err := f.advisor.GenerateSearchQueries(ctx, *film)
	if err != nil {
		log.Printf("[deals] query expansion failed for %q: %v", film.Title, err)
		queries = append(queries, defaultQuery)
	} else if len(expansion.Queries) > 0 {
		log.Printf("[deals] query expansion for %q: %d queries", film.Title, len(expansion.Queries))
		expanded := expansion.Queries
		if len(expanded) > 3 {
			expanded = expanded[:3]
		}
		queries = append(queries, expanded...)
	}

	bundles, err := f.advisor.DetectBundles(ctx, *film)
	if err != nil {
		log.Printf("[deals] bundle detection failed for %q: %v", film.Title, err)
	} else if len(bundles.BundleQueries) > 0 {
		log.Printf("[deals] bundle detection for %q: %d bundles", film.Title, len(bundles.BundleQueries))
		bundle := bundles.BundleQueries
		if len(bundle) > 2 {
			bundle = bundle[:2]
		}
		queries = append(queries, bundle...)
	}

	if len(queries) == 0 {
		queries = append(queries, defaultQuery)
	}
	if len(queries) > maxSearchQueries {
		queries = queries[:maxSearchQueries]
	}
	return queries
}

// buildQuery builds the templated shopping query. Year and director are
// left out on purpose: they rarely appear in product titles and are applied
// as result filters instead.
func buildQuery(searchTitle string) string {
	return `"` + searchTitle + `" (blu-ray OR 4K) (criterion OR arrow OR "shout factory" OR "vinegar syndrome" OR kino)`
}

func acceptableTitles(film *models.Film, searchTitle string) []string {
	all := []string{film.Title}
	all = append(all, film.AlternativeTitles...)
	if searchTitle != film.Title {
		dup := false
		for _, t := range all {
			if t == searchTitle {
				dup = true
				break
			}
		}
		if !dup {
			all = append(all, searchTitle)
		}
	}
	return all
}

// processItem filters one shopping result down to a deal, or nil.
func (f *Finder) processItem(ctx context.Context, film *models.Film, item shopsearch.ShoppingItem) *models.Deal {
	price, ok := extractPrice(item.Price)
	if !ok {
		return nil
	}
	if price > f.maxPrice {
		return nil
	}
	if film.Year > 0 && !yearMatches(item.Title, film.Year) {
		return nil
	}

	if f.advisorEnabled() && isAmbiguousTitle(film, item.Title) {
		if !f.validateMatch(ctx, film, item.Title) {
			log.Printf("[deals] advisor rejected %q for %q", item.Title, film.Title)
			return nil
		}
	}

	result := f.classifier.Classify(item.Title)
	if !result.IsSpecialEdition {
		return nil
	}

	source := item.Source
	if source == "" {
		source = "Unknown"
	}
	return &models.Deal{
		MovieTitle:      film.Title,
		ProductTitle:    item.Title,
		Price:           price,
		Retailer:        source,
		URL:             item.BestLink(),
		SimilarityScore: result.Confidence,
		MatchedExample:  f.classifier.Describe(result),
		Thumbnail:       item.Thumbnail,
		FoundAt:         f.now(),
	}
}

// convertListings turns retailer listings into deals. Listings without a
// price are kept at price zero; showing the listing beats missing it.
func (f *Finder) convertListings(film *models.Film, listings []models.RetailerListing) []models.Deal {
	var out []models.Deal
	for _, l := range listings {
		price := 0.0
		if l.Price != nil {
			price = *l.Price
		}
		if price > 0 && price > f.maxPrice {
			continue
		}
		out = append(out, models.Deal{
			MovieTitle:      film.Title,
			ProductTitle:    l.Title,
			Price:           price,
			Retailer:        l.Retailer,
			URL:             l.URL,
			SimilarityScore: 0.9,
			MatchedExample:  l.EditionType,
			Thumbnail:       l.Thumbnail,
			FoundAt:         f.now(),
		})
	}
	return out
}

func dedupeByURL(deals []models.Deal, seen map[string]struct{}) []models.Deal {
	unique := deals[:0]
	for _, d := range deals {
		if _, dup := seen[d.URL]; dup {
			continue
		}
		seen[d.URL] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}

// refineSearch runs advisor-suggested alternative queries after a sparse
// search and returns whatever extra deals they surface.
func (f *Finder) refineSearch(ctx context.Context, film *models.Film, resultCount int, originalQuery string) []models.Deal {
	suggestions, err := f.advisor.SuggestSearchRefinements(ctx, *film, resultCount, originalQuery)
	if err != nil {
		log.Printf("[deals] search refinement failed for %q: %v", film.Title, err)
		return nil
	}

	alternatives := suggestions.AlternativeQueries
	if len(alternatives) > maxRefineQueries {
		alternatives = alternatives[:maxRefineQueries]
	}

	var extra []models.Deal
	for _, q := range alternatives {
		log.Printf("[deals] trying refined search: %s", q)
		items, err := f.shopping.Shopping(ctx, q)
		if err != nil {
			log.Printf("[deals] refined search failed for query %q: %v", q, err)
			continue
		}
		before := len(extra)
		for _, item := range items {
			if deal := f.processItem(ctx, film, item); deal != nil {
				extra = append(extra, *deal)
			}
		}
		log.Printf("[deals] refined search found %d deals", len(extra)-before)
		f.sleep(f.delay)
	}
	return extra
}

// batchValidate asks the advisor to confirm the top results are for the
// right film. On any failure the full list passes through unchanged.
func (f *Finder) batchValidate(ctx context.Context, film *models.Film, deals []models.Deal) []models.Deal {
	toValidate := deals
	if len(toValidate) > maxBatchValidated {
		toValidate = toValidate[:maxBatchValidated]
	}

	titlesToCheck := make([]string, len(toValidate))
	for i, d := range toValidate {
		titlesToCheck[i] = d.ProductTitle
	}

	result, err := f.advisor.BatchValidateResults(ctx, *film, titlesToCheck)
	if err != nil {
		log.Printf("[deals] batch validation failed for %q: %v", film.Title, err)
		return deals
	}

	var valid []models.Deal
	for _, idx := range result.ValidIndices {
		if idx >= 0 && idx < len(toValidate) {
			valid = append(valid, toValidate[idx])
		}
	}
	if removed := len(toValidate) - len(valid); removed > 0 {
		log.Printf("[deals] batch validation removed %d results for %q: %s",
			removed, film.Title, result.Reasoning)
	}
	return valid
}

// validateMatch is the per-item advisory check for ambiguous titles. Errors
// give the listing the benefit of the doubt.
func (f *Finder) validateMatch(ctx context.Context, film *models.Film, productTitle string) bool {
	result, err := f.advisor.ValidateMovieMatch(ctx, *film, productTitle)
	if err != nil {
		log.Printf("[deals] match validation failed: %v", err)
		return true
	}
	return result.IsMatch && result.Confidence >= 0.6
}

// ambiguousWords are single-word titles shared by several well-known films.
var ambiguousWords = map[string]struct{}{
	"house": {}, "ring": {}, "pulse": {}, "cure": {}, "it": {}, "us": {},
	"them": {}, "mother": {}, "father": {}, "home": {}, "dark": {},
	"gate": {}, "host": {}, "thing": {}, "alien": {}, "ghost": {},
	"crash": {}, "heat": {}, "speed": {}, "dressed": {}, "psycho": {},
	"carrie": {}, "suspiria": {},
}

// isAmbiguousTitle reports whether string matching alone cannot safely tie
// the product to the film: very short titles, known multi-film words, or a
// listing with no year to cross-check against.
func isAmbiguousTitle(film *models.Film, productTitle string) bool {
	if len(film.Title) <= 5 {
		return true
	}
	if _, ok := ambiguousWords[strings.ToLower(film.Title)]; ok {
		return true
	}
	if film.Year > 0 && !yearRe.MatchString(productTitle) {
		return true
	}
	return false
}

var (
	yearRe  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	priceRe = regexp.MustCompile(`\d+\.?\d*`)
)

// yearMatches applies the ±1 year window against any year in the title; a
// title without a year passes.
func yearMatches(productTitle string, expectedYear int) bool {
	found := yearRe.FindAllString(productTitle, -1)
	if len(found) == 0 {
		return true
	}
	for _, y := range found {
		n, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		diff := n - expectedYear
		if diff >= -1 && diff <= 1 {
			return true
		}
	}
	return false
}

// extractPrice pulls a price out of strings like "$19.99", "From $15.00" or
// "$10 - $20", taking the lowest number present.
func extractPrice(priceStr string) (float64, bool) {
	matches := priceRe.FindAllString(priceStr, -1)
	if len(matches) == 0 {
		return 0, false
	}
	lowest := 0.0
	ok := false
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		if !ok || v < lowest {
			lowest = v
			ok = true
		}
	}
	return lowest, ok
}

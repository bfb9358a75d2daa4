package retailers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dealhound/models"
)

type stubMatcher struct {
	name    string
	results []models.RetailerListing
	err     error
	delay   time.Duration
}

func (s *stubMatcher) Name() string { return s.name }

func (s *stubMatcher) Search(ctx context.Context, title string, year int) ([]models.RetailerListing, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.results, s.err
}

func listing(title, retailer string, price float64) models.RetailerListing {
	l := models.RetailerListing{Title: title, Retailer: retailer, URL: "https://example.com/" + retailer}
	if price > 0 {
		l.Price = &price
	}
	return l
}

func TestSearchAllMergesInRegistrationOrder(t *testing.T) {
	// The slowest matcher is registered first: if the merge followed
	// completion order instead of registration order, C would come back
	// before A and the dedup downstream would stop being reproducible.
	s := (&Searcher{}).WithMatchers(
		&stubMatcher{name: "A", delay: 80 * time.Millisecond, results: []models.RetailerListing{listing("House (1977) Blu-ray", "A", 30)}},
		&stubMatcher{name: "B", delay: 40 * time.Millisecond, results: []models.RetailerListing{listing("House 4K UHD", "B", 60)}},
		&stubMatcher{name: "C", results: []models.RetailerListing{listing("House [Hausu] DVD", "C", 15)}},
	)

	got := s.SearchAll(context.Background(), "House", 1977, []string{"House", "Hausu"}, 0)
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	for i, want := range []string{"A", "B", "C"} {
		if got[i].Retailer != want {
			t.Errorf("result %d from %q, want %q", i, got[i].Retailer, want)
		}
	}
}

func TestSearchAllFiltering(t *testing.T) {
	s := (&Searcher{}).WithMatchers(&stubMatcher{name: "A", results: []models.RetailerListing{
		listing("House (1977) Criterion Blu-ray", "A", 40),
		listing("House of Mortal Sin Blu-ray", "A", 20), // wrong film
		listing("House 4K UHD Limited", "A", 90),        // over ceiling
		listing("House (1985) Blu-ray", "A", 25),        // wrong year
		listing("House DVD", "A", 0),                    // no price, kept
	}})

	got := s.SearchAll(context.Background(), "House", 1977, []string{"House"}, 50)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}
	if got[0].Title != "House (1977) Criterion Blu-ray" || got[1].Title != "House DVD" {
		t.Errorf("unexpected survivors: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestSearchAllMatcherErrorDegradesToEmpty(t *testing.T) {
	s := (&Searcher{}).WithMatchers(
		&stubMatcher{name: "broken", err: errors.New("storefront redesigned")},
		&stubMatcher{name: "ok", results: []models.RetailerListing{listing("House Blu-ray", "ok", 25)}},
	)

	got := s.SearchAll(context.Background(), "House", 1977, []string{"House"}, 0)
	if len(got) != 1 || got[0].Retailer != "ok" {
		t.Fatalf("one matcher failing should not poison the rest: %+v", got)
	}
}

func TestSearchAllDefaultsAcceptTitles(t *testing.T) {
	s := (&Searcher{}).WithMatchers(&stubMatcher{name: "A", results: []models.RetailerListing{
		listing("Suspiria (1977) 4K", "A", 30),
	}})

	got := s.SearchAll(context.Background(), "Suspiria", 1977, nil, 0)
	if len(got) != 1 {
		t.Fatalf("empty acceptTitles should fall back to the search title: %+v", got)
	}
}

func TestNewSearcherRegistersDefaultRetailers(t *testing.T) {
	s := NewSearcher(nil, nil)
	if len(s.matchers) != 5 {
		t.Fatalf("got %d matchers, want 5", len(s.matchers))
	}
	names := make([]string, 0, len(s.matchers))
	for _, m := range s.matchers {
		names = append(names, m.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"Vinegar Syndrome", "Arrow Video", "Severin Films", "Grindhouse Video", "Diabolik DVD"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing default matcher %q in %v", want, names)
		}
	}
}

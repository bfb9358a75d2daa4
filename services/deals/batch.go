package deals

import (
	"context"
	"log"

	"github.com/google/uuid"

	"dealhound/models"
	"dealhound/services/salewindow"
)

// FindAll searches every film sequentially and returns the combined deal
// list. The run stops between films when ctx is cancelled; deals already
// found are returned.
func (f *Finder) FindAll(ctx context.Context, films []*models.Film, skipCache bool) []models.Deal {
	runID := uuid.New().String()[:8]

	if active, name := salewindow.Active(f.now()); active {
		log.Printf("[deals] run %s: sale period (%s), caching disabled", runID, name)
	} else {
		log.Printf("[deals] run %s: normal period, cache ttl %dh", runID, salewindow.CacheTTLHours(f.now()))
	}

	var all []models.Deal
	for i, film := range films {
		if err := ctx.Err(); err != nil {
			log.Printf("[deals] run %s stopped after %d/%d films: %v", runID, i, len(films), err)
			return all
		}
		log.Printf("[deals] run %s: processing %d/%d: %s", runID, i+1, len(films), film.Title)
		found := f.Search(ctx, film, skipCache)
		all = append(all, found...)
		log.Printf("[deals] run %s: %d deals for %s", runID, len(found), film.Title)
	}

	log.Printf("[deals] run %s: total deals found: %d", runID, len(all))
	return all
}

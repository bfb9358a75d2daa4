package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"dealhound/models"
)

// CacheRepository stores searched deal lists keyed by title and price
// ceiling. Expired rows are treated as absent on read and reaped by
// ClearExpired.
type CacheRepository struct {
	db *sql.DB
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// cacheKey normalizes the (title, ceiling) pair so that "House " at 30 and
// "house" at 30.00 share an entry.
func cacheKey(movieTitle string, maxPrice float64) string {
	return fmt.Sprintf("%s|%.2f", strings.ToLower(strings.TrimSpace(movieTitle)), maxPrice)
}

// Get returns the cached deals for a search, with ok=false on miss or when
// the entry has expired.
func (r *CacheRepository) Get(movieTitle string, maxPrice float64) ([]models.Deal, bool, error) {
	var resultsJSON string
	err := r.db.QueryRow(`
		SELECT results_json FROM search_cache
		WHERE cache_key = ? AND expires_at > ?
	`, cacheKey(movieTitle, maxPrice), time.Now()).Scan(&resultsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query search cache: %w", err)
	}

	var deals []models.Deal
	if err := json.Unmarshal([]byte(resultsJSON), &deals); err != nil {
		// A corrupt row is a miss, not a failure; the next Set overwrites it.
		log.Printf("[cache] discarding unreadable entry for %q: %v", movieTitle, err)
		return nil, false, nil
	}
	return deals, true, nil
}

// Set caches the deals for a search. A TTL of zero or less means caching is
// disabled for this period and the call is a no-op.
func (r *CacheRepository) Set(movieTitle string, maxPrice float64, deals []models.Deal, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	resultsJSON, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("marshal cached deals: %w", err)
	}

	now := time.Now()
	_, err = r.db.Exec(`
		INSERT INTO search_cache (cache_key, results_json, cached_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			results_json = excluded.results_json,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at
	`, cacheKey(movieTitle, maxPrice), string(resultsJSON), now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("write search cache: %w", err)
	}
	return nil
}

// ClearExpired removes entries past their expiry and reports how many went.
func (r *CacheRepository) ClearExpired() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM search_cache WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("clear expired cache: %w", err)
	}
	return res.RowsAffected()
}

// ClearAll empties the cache and reports how many entries were removed.
func (r *CacheRepository) ClearAll() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM search_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats summarizes cache occupancy for the status command.
type Stats struct {
	TotalEntries   int
	ExpiredEntries int
}

// GetStats counts live and expired cache rows.
func (r *CacheRepository) GetStats() (Stats, error) {
	var s Stats
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM search_cache`).Scan(&s.TotalEntries); err != nil {
		return s, fmt.Errorf("count cache entries: %w", err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM search_cache WHERE expires_at < ?`, time.Now()).Scan(&s.ExpiredEntries); err != nil {
		return s, fmt.Errorf("count expired cache entries: %w", err)
	}
	return s, nil
}

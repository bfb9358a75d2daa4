package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealhound/models"
)

// setupTestCacheRepo creates a test database and cache repository.
func setupTestCacheRepo(t *testing.T) (*DB, *CacheRepository) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	require.NoError(t, err, "create test database")
	t.Cleanup(func() { db.Close() })

	repo := NewCacheRepository(db.Connection())
	return db, repo
}

func sampleDeals() []models.Deal {
	return []models.Deal{
		{
			MovieTitle:      "House",
			ProductTitle:    "Hausu (1977) Criterion Collection Blu-ray",
			Price:           24.99,
			Retailer:        "Amazon",
			URL:             "https://example.com/hausu",
			SimilarityScore: 0.95,
			MatchedExample:  "Criterion Collection",
			FoundAt:         time.Now().UTC().Truncate(time.Second),
		},
		{
			MovieTitle:   "House",
			ProductTitle: "House 4K UHD Limited Edition",
			Price:        49.99,
			Retailer:     "Vinegar Syndrome",
			URL:          "https://example.com/house-4k",
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	_, repo := setupTestCacheRepo(t)

	deals := sampleDeals()
	require.NoError(t, repo.Set("House", 30, deals, 48*time.Hour))

	got, ok, err := repo.Get("House", 30)
	require.NoError(t, err)
	require.True(t, ok, "expected cache hit")
	require.Len(t, got, 2)

	// Order must survive the round trip.
	assert.Equal(t, deals[0].ProductTitle, got[0].ProductTitle)
	assert.Equal(t, deals[1].ProductTitle, got[1].ProductTitle)
	assert.Equal(t, 24.99, got[0].Price)
	assert.Equal(t, 0.95, got[0].SimilarityScore)
}

func TestCacheKeyNormalization(t *testing.T) {
	_, repo := setupTestCacheRepo(t)

	require.NoError(t, repo.Set("  House  ", 30, sampleDeals(), time.Hour))

	// Same title modulo case/whitespace, same ceiling modulo formatting.
	_, ok, _ := repo.Get("house", 30.004)
	assert.True(t, ok, "normalized key should hit")

	_, ok, _ = repo.Get("House", 25)
	assert.False(t, ok, "different ceiling should miss")

	_, ok, _ = repo.Get("Hausu", 30)
	assert.False(t, ok, "different title should miss")
}

func TestCacheExpiredEntryIsMiss(t *testing.T) {
	db, repo := setupTestCacheRepo(t)

	require.NoError(t, repo.Set("House", 30, sampleDeals(), time.Hour))

	// Age the entry past its expiry.
	_, err := db.Connection().Exec(`UPDATE search_cache SET expires_at = ?`, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, ok, err := repo.Get("House", 30)
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be a miss")
}

func TestCacheZeroTTLDoesNotWrite(t *testing.T) {
	_, repo := setupTestCacheRepo(t)

	require.NoError(t, repo.Set("House", 30, sampleDeals(), 0))

	_, ok, _ := repo.Get("House", 30)
	assert.False(t, ok, "zero TTL must not cache")
}

func TestCacheOverwrite(t *testing.T) {
	_, repo := setupTestCacheRepo(t)

	require.NoError(t, repo.Set("House", 30, sampleDeals(), time.Hour))
	replacement := []models.Deal{{MovieTitle: "House", ProductTitle: "House DVD", Price: 9.99}}
	require.NoError(t, repo.Set("House", 30, replacement, time.Hour))

	got, ok, err := repo.Get("House", 30)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "House DVD", got[0].ProductTitle)
}

func TestClearExpiredAndClearAll(t *testing.T) {
	db, repo := setupTestCacheRepo(t)

	require.NoError(t, repo.Set("House", 30, sampleDeals(), time.Hour))
	require.NoError(t, repo.Set("Suspiria", 40, sampleDeals(), time.Hour))

	_, err := db.Connection().Exec(`UPDATE search_cache SET expires_at = ? WHERE cache_key = ?`,
		time.Now().Add(-time.Minute), "house|30.00")
	require.NoError(t, err)

	removed, err := repo.ClearExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 0, stats.ExpiredEntries)

	removed, err = repo.ClearAll()
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

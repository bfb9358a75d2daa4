package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// RetailerListing is a single product found on a retailer storefront.
// The URL is the natural dedup key within a search run. Price is a pointer
// because boutique storefronts frequently omit it from search grids; a
// missing price is not an error.
type RetailerListing struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price,omitempty"`
	URL         string   `json:"url"`
	Retailer    string   `json:"retailer"`
	EditionType string   `json:"edition_type"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
}

// Deal is a price-qualified, edition-qualified product listing for a film.
type Deal struct {
	MovieTitle      string    `json:"movie_title"`
	ProductTitle    string    `json:"product_title"`
	Price           float64   `json:"price"`
	Retailer        string    `json:"retailer"`
	URL             string    `json:"url"`
	SimilarityScore float64   `json:"similarity_score"`
	MatchedExample  string    `json:"matched_example"`
	Thumbnail       string    `json:"thumbnail"`
	FoundAt         time.Time `json:"found_at"`
}

// Hash is the identity key used for "already notified" tracking. Price and
// URL are intentionally excluded so repeated sightings of the same product
// collapse even when the price or link churns.
func (d Deal) Hash() string {
	key := fmt.Sprintf("%s|%s|%s", d.MovieTitle, d.ProductTitle, d.Retailer)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

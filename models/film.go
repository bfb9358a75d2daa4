package models

import "fmt"

// Film identifies a single movie being tracked for collectible releases.
// A Film is immutable once a search begins, except that AlternativeTitles
// may be populated by enrichment (the title resolver's static table counts
// as enrichment).
type Film struct {
	Title             string   `json:"title"`
	Year              int      `json:"year,omitempty"`
	CanonicalID       string   `json:"canonical_id,omitempty"`
	Director          string   `json:"director,omitempty"`
	AlternativeTitles []string `json:"alternative_titles,omitempty"`
}

func (f Film) String() string {
	s := f.Title
	if f.Year > 0 {
		s = fmt.Sprintf("%s (%d)", f.Title, f.Year)
	}
	if f.Director != "" {
		s += " - dir. " + f.Director
	}
	return s
}

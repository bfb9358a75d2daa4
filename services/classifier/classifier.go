// Package classifier decides whether a product listing title represents a
// boutique or special edition. It is a strict ordered rule cascade, not a
// weighted score: exclusion terms beat everything, then format detection,
// then boutique labels, then edition keywords, then a low-confidence default.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format is the detected media format of a listing.
type Format string

const (
	Format4KUHD   Format = "4K UHD"
	FormatBluRay  Format = "Blu-ray"
	FormatDVD     Format = "DVD"
	FormatUnknown Format = "Unknown"
)

// Result describes how a listing title was classified. It is a pure function
// of the title text; nothing is persisted.
type Result struct {
	IsSpecialEdition bool    `json:"is_special_edition"`
	Confidence       float64 `json:"confidence"`
	Format           Format  `json:"format"`
	Label            string  `json:"label,omitempty"`
	EditionType      string  `json:"edition_type,omitempty"`
	Reason           string  `json:"reason"`
}

type labelPattern struct {
	label   string
	pattern *regexp.Regexp
}

type keywordPattern struct {
	keyword string
	pattern *regexp.Regexp
}

// Classifier holds the pre-compiled rule tables.
type Classifier struct {
	labels   []labelPattern
	editions []keywordPattern
	excludes []keywordPattern
	formats  []struct {
		format   Format
		patterns []*regexp.Regexp
	}
	titleCaser cases.Caser
}

// New compiles the rule tables. The returned Classifier is safe for
// concurrent use.
func New() *Classifier {
	c := &Classifier{titleCaser: cases.Title(language.English)}

	for _, label := range boutiqueLabels {
		c.labels = append(c.labels, labelPattern{
			label:   label,
			pattern: wholeWord(label),
		})
	}
	for _, kw := range editionKeywords {
		c.editions = append(c.editions, keywordPattern{keyword: kw, pattern: wholeWord(kw)})
	}
	for _, kw := range excludeKeywords {
		c.excludes = append(c.excludes, keywordPattern{keyword: kw, pattern: wholeWord(kw)})
	}

	// Format priority: 4K beats Blu-ray beats DVD.
	for _, f := range []Format{Format4KUHD, FormatBluRay, FormatDVD} {
		compiled := make([]*regexp.Regexp, 0, len(formatPatterns[f]))
		for _, p := range formatPatterns[f] {
			compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
		}
		c.formats = append(c.formats, struct {
			format   Format
			patterns []*regexp.Regexp
		}{f, compiled})
	}
	return c
}

func wholeWord(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// Classify runs the rule cascade over a product title. First match wins.
func (c *Classifier) Classify(productTitle string) Result {
	if kw, ok := c.excludedBy(productTitle); ok {
		return Result{
			IsSpecialEdition: false,
			Confidence:       0.9,
			Format:           c.detectFormat(productTitle),
			Reason:           fmt.Sprintf("Excluded: contains %q", kw),
		}
	}

	format := c.detectFormat(productTitle)

	if label := c.findLabel(productTitle); label != "" {
		return Result{
			IsSpecialEdition: true,
			Confidence:       0.95,
			Format:           format,
			Label:            label,
			EditionType:      label + " Release",
			Reason:           "Boutique label: " + label,
		}
	}

	if keywords := c.findEditionKeywords(productTitle); len(keywords) > 0 {
		shown := keywords
		if len(shown) > 3 {
			shown = shown[:3]
		}
		return Result{
			IsSpecialEdition: true,
			Confidence:       0.8,
			Format:           format,
			EditionType:      c.titleCaser.String(keywords[0]),
			Reason:           "Edition keywords: " + strings.Join(shown, ", "),
		}
	}

	return Result{
		IsSpecialEdition: false,
		Confidence:       0.7,
		Format:           format,
		Reason:           "No boutique label or special edition indicators found",
	}
}

// Describe returns the short human-readable match description used for a
// Deal's matched-example field.
func (c *Classifier) Describe(r Result) string {
	if r.Label != "" {
		edition := r.EditionType
		if edition == "" {
			edition = "Special Edition"
		}
		return r.Label + " - " + edition
	}
	if r.EditionType != "" {
		return r.EditionType
	}
	return r.Reason
}

func (c *Classifier) excludedBy(title string) (string, bool) {
	for _, e := range c.excludes {
		if e.pattern.MatchString(title) {
			return e.keyword, true
		}
	}
	return "", false
}

func (c *Classifier) detectFormat(title string) Format {
	for _, f := range c.formats {
		for _, p := range f.patterns {
			if p.MatchString(title) {
				return f.format
			}
		}
	}
	return FormatUnknown
}

func (c *Classifier) findLabel(title string) string {
	for _, l := range c.labels {
		if l.pattern.MatchString(title) {
			return l.label
		}
	}
	return ""
}

func (c *Classifier) findEditionKeywords(title string) []string {
	var found []string
	for _, e := range c.editions {
		if e.pattern.MatchString(title) {
			found = append(found, e.keyword)
		}
	}
	return found
}

// Package titles picks the best searchable title for a film. Generic
// single-word English titles ("House", "Ring") drown in unrelated shopping
// results, so a more discriminating alternative title - typically the
// romanized original-language one - is preferred when available.
package titles

import (
	"log"
	"strings"

	"dealhound/models"
)

type altKey struct {
	title string
	year  int
}

// knownAlternatives maps (lowercased title, year) to alternative titles for
// films whose English release title is too generic to search. The romanized
// form comes first, the native script second.
var knownAlternatives = map[altKey][]string{
	{"house", 1977}:                       {"Hausu", "ハウス"},
	{"ring", 1998}:                        {"Ringu", "リング"},
	{"pulse", 2001}:                       {"Kairo", "回路"},
	{"cure", 1997}:                        {"Kyua", "キュア"},
	{"audition", 1999}:                    {"Odishon", "オーディション"},
	{"mother", 2009}:                      {"Madeo", "마더"},
	{"dark water", 2002}:                  {"Honogurai mizu no soko kara", "仄暗い水の底から"},
	{"one cut of the dead", 2017}:         {"Kamera o tomeru na!", "カメラを止めるな!"},
	{"battle royale", 2000}:               {"Batoru rowaiaru", "バトル・ロワイアル"},
	{"oldboy", 2003}:                      {"Oldeuboi", "올드보이"},
	{"sympathy for mr. vengeance", 2002}:  {"Boksuneun naui geot", "복수는 나의 것"},
	{"lady vengeance", 2005}:              {"Chinjeolhan geumjassi", "친절한 금자씨"},
	{"i saw the devil", 2010}:             {"Akmareul boatda", "악마를 보았다"},
	{"the host", 2006}:                    {"Gwoemul", "괴물"},
	{"train to busan", 2016}:              {"Busanhaeng", "부산행"},
	{"parasite", 2019}:                    {"Gisaengchung", "기생충"},
	{"memories of murder", 2003}:          {"Salinui chueok", "살인의 추억"},
	{"a tale of two sisters", 2003}:       {"Janghwa, Hongryeon", "장화, 홍련"},
	{"thirst", 2009}:                      {"Bakjwi", "박쥐"},
}

// genericWords are common English titles that produce heavy false positives
// in shopping search.
var genericWords = map[string]struct{}{
	"house": {}, "ring": {}, "pulse": {}, "cure": {}, "audition": {},
	"mother": {}, "father": {}, "brother": {}, "sister": {}, "home": {},
	"dark": {}, "gate": {},
}

// Resolve returns the best title to use when querying external sources.
//
// Priority order:
//  1. the static known-alternatives table, which also populates the film's
//     alternative-title list when it fires and the list is empty;
//  2. for generic titles, the first usable dynamically fetched alternative;
//  3. the film's own title, unchanged.
//
// The function is deterministic and idempotent: resolving the same film
// twice yields the same string.
func Resolve(film *models.Film) string {
	titleLower := strings.ToLower(film.Title)

	if film.Year > 0 {
		if alts, ok := knownAlternatives[altKey{titleLower, film.Year}]; ok {
			for _, alt := range alts {
				if usableAlternative(alt, titleLower) {
					log.Printf("[titles] using known alternative %q for %q (%d)", alt, film.Title, film.Year)
					if len(film.AlternativeTitles) == 0 {
						film.AlternativeTitles = append([]string(nil), alts...)
					}
					return alt
				}
			}
		}
	}

	if len(film.AlternativeTitles) == 0 {
		return film.Title
	}

	if _, generic := genericWords[titleLower]; generic || len(film.Title) <= 5 {
		for _, alt := range film.AlternativeTitles {
			if strings.EqualFold(alt, film.Title) {
				continue
			}
			if usableAlternative(alt, titleLower) {
				return alt
			}
		}
	}

	return film.Title
}

// usableAlternative reports whether an alternative title is worth searching
// with: plain ASCII and long enough to be discriminating.
func usableAlternative(alt, originalLower string) bool {
	return isASCII(alt) && len(alt) >= 3 && strings.ToLower(alt) != originalLower
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

package classifier

import "testing"

func TestClassifyExclusionBeatsLabel(t *testing.T) {
	c := New()

	// A DVD marker disqualifies even when a boutique label is present.
	r := c.Classify("House (1977) DVD Criterion Collection")
	if r.IsSpecialEdition {
		t.Fatalf("DVD listing classified as special: %+v", r)
	}
	if r.Confidence != 0.9 {
		t.Fatalf("exclusion confidence = %v, want 0.9", r.Confidence)
	}
	if r.Format != FormatDVD {
		t.Fatalf("format = %v, want DVD", r.Format)
	}
}

func TestClassifyBoutiqueLabel(t *testing.T) {
	c := New()

	r := c.Classify("Hausu (1977) Criterion Collection Blu-ray")
	if !r.IsSpecialEdition {
		t.Fatalf("Criterion listing not special: %+v", r)
	}
	if r.Confidence != 0.95 {
		t.Fatalf("label confidence = %v, want 0.95", r.Confidence)
	}
	if r.Label != "Criterion Collection" {
		t.Fatalf("label = %q, want Criterion Collection", r.Label)
	}
	if r.Format != FormatBluRay {
		t.Fatalf("format = %v, want Blu-ray", r.Format)
	}
}

func TestClassifyEditionKeywords(t *testing.T) {
	c := New()

	r := c.Classify("Akira 4K Ultra HD Steelbook")
	if !r.IsSpecialEdition {
		t.Fatalf("steelbook listing not special: %+v", r)
	}
	if r.Confidence != 0.8 {
		t.Fatalf("keyword confidence = %v, want 0.8", r.Confidence)
	}
	if r.Format != Format4KUHD {
		t.Fatalf("format = %v, want 4K UHD", r.Format)
	}
	if r.EditionType == "" {
		t.Fatal("expected edition type from keyword match")
	}
}

func TestClassifyNoIndicators(t *testing.T) {
	c := New()

	r := c.Classify("Vertigo Blu-ray")
	if r.IsSpecialEdition {
		t.Fatalf("plain listing classified as special: %+v", r)
	}
	if r.Confidence != 0.7 {
		t.Fatalf("default confidence = %v, want 0.7", r.Confidence)
	}
}

func TestClassifyFormatPriority(t *testing.T) {
	c := New()

	// Titles listing both formats classify as 4K.
	r := c.Classify("The Shining (Criterion Collection) 4K UHD + Blu-ray combo")
	if r.Format != Format4KUHD {
		t.Fatalf("format = %v, want 4K UHD", r.Format)
	}
}

func TestClassifyTable(t *testing.T) {
	c := New()

	tests := []struct {
		title       string
		wantSpecial bool
	}{
		{"The Shining (Criterion Collection) [4K UHD Blu-ray]", true},
		{"Jaws - Standard Edition Blu-ray", false},
		{"Alien 4K Ultra HD Steelbook Limited Edition", true},
		{"Spider-Man DVD Walmart Exclusive", false},
		{"Arrow Video: Society Limited Edition Blu-ray with Slipcover", true},
		{"Suspiria 4K UHD Synapse Films", true},
		{"Office Space DVD", false},
		{"The Thing VHS collector tape", false},
		{"Oldboy Blu-ray previously viewed", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			r := c.Classify(tt.title)
			if r.IsSpecialEdition != tt.wantSpecial {
				t.Fatalf("Classify(%q).IsSpecialEdition = %v, want %v (%s)",
					tt.title, r.IsSpecialEdition, tt.wantSpecial, r.Reason)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	c := New()

	r := c.Classify("Hausu (1977) Criterion Collection Blu-ray")
	if got := c.Describe(r); got != "Criterion Collection - Criterion Collection Release" {
		t.Fatalf("Describe = %q", got)
	}

	r = c.Classify("Akira Steelbook Blu-ray")
	if got := c.Describe(r); got != "Steelbook" {
		t.Fatalf("Describe = %q", got)
	}
}

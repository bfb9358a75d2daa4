package models

import "testing"

func TestDealHashIgnoresPriceAndURL(t *testing.T) {
	base := Deal{
		MovieTitle:   "House",
		ProductTitle: "Hausu (1977) Criterion Collection Blu-ray",
		Price:        24.99,
		Retailer:     "Amazon",
		URL:          "https://example.com/hausu",
	}

	repriced := base
	repriced.Price = 19.99
	repriced.URL = "https://example.com/hausu-sale"
	if base.Hash() != repriced.Hash() {
		t.Error("same product at a new price/link should keep its identity")
	}

	elsewhere := base
	elsewhere.Retailer = "Vinegar Syndrome"
	if base.Hash() == elsewhere.Hash() {
		t.Error("same product at a different retailer is a different deal")
	}

	otherEdition := base
	otherEdition.ProductTitle = "House (1977) DVD"
	if base.Hash() == otherEdition.Hash() {
		t.Error("different product title is a different deal")
	}
}

func TestDealHashStable(t *testing.T) {
	d := Deal{MovieTitle: "House", ProductTitle: "Hausu Blu-ray", Retailer: "Amazon"}
	if d.Hash() != d.Hash() {
		t.Error("hash must be deterministic")
	}
	if len(d.Hash()) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(d.Hash()))
	}
}

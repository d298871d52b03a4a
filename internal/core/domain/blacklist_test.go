package domain

import "testing"

func TestNewBlacklistNormalizesTerms(t *testing.T) {
	bl := NewBlacklist([]string{"  WG  ", "", "Befristet", "   "})

	if len(bl) != 2 {
		t.Fatalf("expected 2 terms, got %d: %v", len(bl), bl)
	}
	if bl[0] != "wg" || bl[1] != "befristet" {
		t.Fatalf("terms not normalized: %v", bl)
	}
}

func TestBlacklistAllows(t *testing.T) {
	bl := NewBlacklist([]string{"wg", "befristet"})

	cases := []struct {
		name    string
		listing Listing
		want    bool
	}{
		{"clean listing", Listing{Title: "Schöne Wohnung", Description: "Helle Räume"}, true},
		{"term in title", Listing{Title: "WG-Zimmer in Zürich"}, false},
		{"term in description", Listing{Title: "Wohnung", Description: "Nur befristet verfügbar"}, false},
		{"case insensitive", Listing{Title: "BEFRISTETE Wohnung"}, false},
		{"empty title always rejected", Listing{Title: "", Description: "ok"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bl.Allows(tc.listing); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestEmptyBlacklistAllowsTitledListings(t *testing.T) {
	var bl Blacklist

	if !bl.Allows(Listing{Title: "Wohnung"}) {
		t.Fatal("empty blacklist must allow titled listings")
	}
	if bl.Allows(Listing{}) {
		t.Fatal("untitled listing must be rejected regardless of blacklist")
	}
}

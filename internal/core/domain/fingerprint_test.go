package domain

import "testing"

func TestListingFingerprintDeterministic(t *testing.T) {
	first := ListingFingerprint(12345, "1’500 CHF")
	second := ListingFingerprint(12345, "1’500 CHF")

	if first != second {
		t.Fatalf("fingerprint is not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64-char hex fingerprint, got %d chars", len(first))
	}
}

func TestListingFingerprintChangesWithPrice(t *testing.T) {
	before := ListingFingerprint(12345, "1’500 CHF")
	after := ListingFingerprint(12345, "1’600 CHF")

	if before == after {
		t.Fatal("price change must produce a new fingerprint")
	}
}

func TestListingFingerprintChangesWithID(t *testing.T) {
	a := ListingFingerprint(1, "1’500 CHF")
	b := ListingFingerprint(2, "1’500 CHF")

	if a == b {
		t.Fatal("different listings must have different fingerprints")
	}
}

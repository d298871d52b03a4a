package flatfoxfetcher

import (
	"strings"
	"testing"

	"flatfox-parser-service/internal/core/port"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields port.Fields)             {}
func (nopLogger) Warn(msg string, fields port.Fields)             {}
func (nopLogger) Error(msg string, err error, fields port.Fields) {}
func (nopLogger) Debug(msg string, fields port.Fields)            {}
func (nopLogger) WithFields(fields port.Fields) port.LoggerPort   { return nopLogger{} }

func f64(v float64) *float64 { return &v }

func TestToListingRejectsRecordWithoutURL(t *testing.T) {
	record := apiListing{PK: 1, PitchTitle: "Wohnung"}

	if _, ok := toListing(record, nopLogger{}); ok {
		t.Fatal("record without url must be rejected")
	}
}

func TestToListingRejectsRecordWithoutTitle(t *testing.T) {
	record := apiListing{PK: 1, URL: "/de/flat/1"}

	if _, ok := toListing(record, nopLogger{}); ok {
		t.Fatal("record without any title must be rejected")
	}
}

func TestToListingPrefersPitchTitle(t *testing.T) {
	record := apiListing{
		PK:          1,
		URL:         "/de/flat/1",
		PitchTitle:  "Charmante Altbauwohnung",
		ObjectTitle: "3.5-Zimmerwohnung",
	}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if listing.Title != "Charmante Altbauwohnung" {
		t.Fatalf("expected pitch title, got %q", listing.Title)
	}
}

func TestToListingFallsBackToObjectTitle(t *testing.T) {
	record := apiListing{PK: 1, URL: "/de/flat/1", ObjectTitle: "3.5-Zimmerwohnung"}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if listing.Title != "3.5-Zimmerwohnung" {
		t.Fatalf("expected object title, got %q", listing.Title)
	}
}

func TestToListingPriceFormatting(t *testing.T) {
	record := apiListing{
		PK:           42,
		URL:          "/de/flat/42",
		PitchTitle:   "Wohnung",
		PriceDisplay: f64(1500),
	}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if listing.Price != "1’500 CHF" {
		t.Fatalf("expected swiss-formatted price, got %q", listing.Price)
	}
	if listing.PriceValue == nil || *listing.PriceValue != 1500 {
		t.Fatalf("raw price value not preserved: %v", listing.PriceValue)
	}
}

func TestToListingMissingPriceStaysEmpty(t *testing.T) {
	record := apiListing{PK: 42, URL: "/de/flat/42", PitchTitle: "Wohnung"}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if listing.Price != "" {
		t.Fatalf("expected empty price, got %q", listing.Price)
	}
	if listing.PriceValue != nil {
		t.Fatal("expected nil raw price value")
	}
}

func TestToListingSize(t *testing.T) {
	cases := []struct {
		name    string
		rooms   *float64
		surface *float64
		want    string
	}{
		{"both", f64(3.5), f64(72), "3.5 rooms, 72 m²"},
		{"rooms only", f64(2), nil, "2 rooms"},
		{"surface only", nil, f64(120), "120 m²"},
		{"neither", nil, nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := apiListing{
				PK:            1,
				URL:           "/de/flat/1",
				PitchTitle:    "Wohnung",
				NumberOfRooms: tc.rooms,
				SurfaceLiving: tc.surface,
			}

			listing, ok := toListing(record, nopLogger{})
			if !ok {
				t.Fatal("expected valid listing")
			}
			if listing.Size != tc.want {
				t.Fatalf("expected %q got %q", tc.want, listing.Size)
			}
		})
	}
}

func TestToListingDescription(t *testing.T) {
	long := strings.Repeat("ä", 300)

	short := apiListing{PK: 1, URL: "/u", PitchTitle: "T", DescriptionTitle: "Kurz und gut", Description: long}
	listing, _ := toListing(short, nopLogger{})
	if listing.Description != "Kurz und gut" {
		t.Fatalf("description_title must win, got %q", listing.Description)
	}

	truncated := apiListing{PK: 1, URL: "/u", PitchTitle: "T", Description: long}
	listing, _ = toListing(truncated, nopLogger{})
	runes := []rune(listing.Description)
	if len(runes) != 201 || runes[len(runes)-1] != '…' {
		t.Fatalf("expected 200 runes plus ellipsis, got %d runes", len(runes))
	}
}

func TestToListingAbsolutizesLinks(t *testing.T) {
	record := apiListing{
		PK:         7,
		URL:        "/de/flat/7",
		PitchTitle: "Wohnung",
		CoverImage: &coverImage{URL: "/media/img/7.jpg"},
	}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if listing.Link != "https://flatfox.ch/de/flat/7" {
		t.Fatalf("unexpected link: %q", listing.Link)
	}
	if listing.Image != "https://flatfox.ch/media/img/7.jpg" {
		t.Fatalf("unexpected image: %q", listing.Image)
	}
}

func TestToListingAssignsFingerprint(t *testing.T) {
	record := apiListing{PK: 7, URL: "/de/flat/7", PitchTitle: "Wohnung", PriceDisplay: f64(900)}

	listing, ok := toListing(record, nopLogger{})
	if !ok {
		t.Fatal("expected valid listing")
	}
	if len(listing.Fingerprint) != 64 {
		t.Fatalf("expected sha256 hex fingerprint, got %q", listing.Fingerprint)
	}
}

package contracts

import (
	"strings"
	"testing"
)

func TestGenerateKeyFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"events/search-task/v1.json", "SearchTaskEvent/1.0.0"},
		{"events/processed-listing/v1.json", "ProcessedListingEvent/1.0.0"},
		{"events/broken.json", ""},
	}

	for _, tc := range cases {
		if got := generateKeyFromPath(tc.path); got != tc.want {
			t.Fatalf("path %q: expected key %q, got %q", tc.path, tc.want, got)
		}
	}
}

func TestValidateSearchTaskEvent(t *testing.T) {
	valid := `{
		"search_url": "https://flatfox.ch/de/search/?max_price=2000",
		"task_id": "3e1f4de4-6a0e-4b36-9f0e-76cb6a6f2f10"
	}`
	if err := ValidateEvent("SearchTaskEvent", "1.0.0", []byte(valid)); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	missingURL := `{"task_id": "3e1f4de4-6a0e-4b36-9f0e-76cb6a6f2f10"}`
	if err := ValidateEvent("SearchTaskEvent", "1.0.0", []byte(missingURL)); err == nil {
		t.Fatal("event without search_url must be rejected")
	}

	extraField := `{
		"search_url": "https://flatfox.ch/de/search/",
		"task_id": "3e1f4de4-6a0e-4b36-9f0e-76cb6a6f2f10",
		"unexpected": true
	}`
	if err := ValidateEvent("SearchTaskEvent", "1.0.0", []byte(extraField)); err == nil {
		t.Fatal("event with unknown fields must be rejected")
	}
}

func TestValidateProcessedListingEvent(t *testing.T) {
	valid := `{
		"source": "flatfox",
		"sourceListingId": 12345,
		"fingerprint": "` + strings.Repeat("ab", 32) + `",
		"title": "Schöne Wohnung",
		"price": "1’500 CHF",
		"link": "https://flatfox.ch/de/flat/12345",
		"priceValue": 1500,
		"roomsCount": null,
		"task_id": "3e1f4de4-6a0e-4b36-9f0e-76cb6a6f2f10"
	}`
	if err := ValidateEvent("ProcessedListingEvent", "1.0.0", []byte(valid)); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	badFingerprint := `{
		"source": "flatfox",
		"sourceListingId": 12345,
		"fingerprint": "not-a-hash",
		"title": "Wohnung",
		"link": "https://flatfox.ch/de/flat/12345",
		"task_id": "3e1f4de4-6a0e-4b36-9f0e-76cb6a6f2f10"
	}`
	if err := ValidateEvent("ProcessedListingEvent", "1.0.0", []byte(badFingerprint)); err == nil {
		t.Fatal("malformed fingerprint must be rejected")
	}
}

func TestValidateEventUnknownSchema(t *testing.T) {
	if err := ValidateEvent("NoSuchEvent", "1.0.0", []byte(`{}`)); err == nil {
		t.Fatal("unknown event type must be rejected")
	}
}

func TestValidateEventMalformedBody(t *testing.T) {
	if err := ValidateEvent("SearchTaskEvent", "1.0.0", []byte(`{broken`)); err == nil {
		t.Fatal("malformed JSON must be rejected")
	}
}

package flatfoxfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"flatfox-parser-service/internal/core/domain"
)

func TestFetchPinsForcesMaxCount(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `[{"pk": 101}, {"pk": 102}]`)
	}))
	defer server.Close()

	adapter, err := NewFlatfoxFetcherAdapter(server.URL, 0)
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}

	params := domain.SearchParams{
		"object_category": "APARTMENT",
		"max_count":       "9999",
		"tracking_token":  "ignored",
	}

	pins, err := adapter.FetchPins(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pins) != 2 || pins[0].PK != 101 || pins[1].PK != 102 {
		t.Fatalf("unexpected pins: %+v", pins)
	}

	if !strings.Contains(gotQuery, "max_count=400") {
		t.Fatalf("max_count must be forced to 400, got query %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "object_category=APARTMENT") {
		t.Fatalf("recognized param missing from query %q", gotQuery)
	}
	if strings.Contains(gotQuery, "tracking_token") {
		t.Fatalf("unrecognized param must not be forwarded, got query %q", gotQuery)
	}
}

func TestFetchPinsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter, err := NewFlatfoxFetcherAdapter(server.URL, 0)
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}

	_, err = adapter.FetchPins(context.Background(), domain.SearchParams{})
	var upstreamErr *domain.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", upstreamErr.StatusCode)
	}
}

func TestFetchDetailsWithoutPinsMakesNoRequests(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	adapter, err := NewFlatfoxFetcherAdapter(server.URL, 0)
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}

	listings, err := adapter.FetchDetails(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
	if requests != 0 {
		t.Fatalf("expected zero HTTP requests, got %d", requests)
	}
}

func TestFetchDetailsSkipsFailedBatch(t *testing.T) {
	var mu sync.Mutex
	var batchCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		batchCalls++
		call := batchCalls
		mu.Unlock()

		// Второй батч сбоит, остальные отвечают штатно
		if call == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var records []string
		for _, pk := range r.URL.Query()["pk"] {
			records = append(records, fmt.Sprintf(
				`{"pk": %s, "url": "/de/flat/%s", "pitch_title": "Wohnung %s", "price_display": 1200}`,
				pk, pk, pk,
			))
		}
		fmt.Fprintf(w, `{"results": [%s]}`, strings.Join(records, ","))
	}))
	defer server.Close()

	adapter, err := NewFlatfoxFetcherAdapter(server.URL, 0)
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}

	pins := make([]domain.ListingPin, 45)
	for i := range pins {
		pins[i] = domain.ListingPin{PK: int64(i + 1)}
	}

	listings, err := adapter.FetchDetails(context.Background(), pins)
	if err != nil {
		t.Fatalf("failed batch must not fail the whole fetch: %v", err)
	}

	// 45 идентификаторов = батчи 20+20+5; второй батч потерян
	if batchCalls != 3 {
		t.Fatalf("expected 3 batch requests, got %d", batchCalls)
	}
	if len(listings) != 25 {
		t.Fatalf("expected 25 listings from surviving batches, got %d", len(listings))
	}
}

func TestFetchDetailsDropsUnusableRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"pk": 1, "url": "/de/flat/1", "pitch_title": "Wohnung"},
			{"pk": 2, "pitch_title": "Ohne Link"},
			{"pk": 3, "url": "/de/flat/3"}
		]`)
	}))
	defer server.Close()

	adapter, err := NewFlatfoxFetcherAdapter(server.URL, 0)
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}

	listings, err := adapter.FetchDetails(context.Background(), []domain.ListingPin{{PK: 1}, {PK: 2}, {PK: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 usable listing, got %d", len(listings))
	}
	if listings[0].SourceID != 1 {
		t.Fatalf("unexpected listing survived: %+v", listings[0])
	}
}

func TestNewFlatfoxFetcherAdapterRejectsInvalidBaseURL(t *testing.T) {
	if _, err := NewFlatfoxFetcherAdapter("not a url", 0); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

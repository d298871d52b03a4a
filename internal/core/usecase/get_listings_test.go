package usecase

import (
	"context"
	"errors"
	"testing"

	"flatfox-parser-service/internal/core/domain"
)

type stubFetcher struct {
	fetchPins    func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error)
	fetchDetails func(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error)

	pinCalls    int
	detailCalls int
}

func (s *stubFetcher) FetchPins(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
	s.pinCalls++
	return s.fetchPins(ctx, params)
}

func (s *stubFetcher) FetchDetails(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
	s.detailCalls++
	return s.fetchDetails(ctx, pins)
}

func priceOf(v float64) *float64 { return &v }

func TestGetListingsRefiltersByBounds(t *testing.T) {
	fetcher := &stubFetcher{
		fetchPins: func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
			return []domain.ListingPin{{PK: 101}, {PK: 102}}, nil
		},
		fetchDetails: func(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
			if len(pins) != 2 {
				t.Fatalf("expected 2 pins passed through, got %d", len(pins))
			}
			return []domain.Listing{
				{SourceID: 101, Title: "In budget", PriceValue: priceOf(1500)},
				{SourceID: 102, Title: "Too expensive", PriceValue: priceOf(5000)},
			}, nil
		},
	}

	uc := NewGetListingsUseCase(fetcher)
	listings := uc.Execute(context.Background(), "https://flatfox.ch/de/search/?max_price=2000")

	if len(listings) != 1 {
		t.Fatalf("expected 1 listing after refiltering, got %d", len(listings))
	}
	if listings[0].SourceID != 101 {
		t.Fatalf("wrong listing survived: %+v", listings[0])
	}
}

func TestGetListingsInvalidURL(t *testing.T) {
	fetcher := &stubFetcher{
		fetchPins: func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
			return nil, nil
		},
		fetchDetails: func(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
			return nil, nil
		},
	}

	uc := NewGetListingsUseCase(fetcher)
	listings := uc.Execute(context.Background(), "::not-a-url")

	if len(listings) != 0 {
		t.Fatalf("expected empty result, got %d listings", len(listings))
	}
	if fetcher.pinCalls != 0 {
		t.Fatal("invalid URL must short-circuit before any fetch")
	}
}

func TestGetListingsPinFetchFailureDegradesToEmpty(t *testing.T) {
	fetcher := &stubFetcher{
		fetchPins: func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
			return nil, &domain.UpstreamError{StatusCode: 503}
		},
	}

	uc := NewGetListingsUseCase(fetcher)
	listings := uc.Execute(context.Background(), "https://flatfox.ch/de/search/?min_price=1")

	if len(listings) != 0 {
		t.Fatalf("expected empty result, got %d listings", len(listings))
	}
	if fetcher.detailCalls != 0 {
		t.Fatal("details must not be fetched after pin failure")
	}
}

func TestGetListingsNoPinsSkipsDetails(t *testing.T) {
	fetcher := &stubFetcher{
		fetchPins: func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
			return nil, nil
		},
		fetchDetails: func(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
			return nil, errors.New("must not be called")
		},
	}

	uc := NewGetListingsUseCase(fetcher)
	listings := uc.Execute(context.Background(), "https://flatfox.ch/de/search/?min_price=1")

	if len(listings) != 0 {
		t.Fatalf("expected empty result, got %d listings", len(listings))
	}
	if fetcher.detailCalls != 0 {
		t.Fatal("details must not be fetched when there are no pins")
	}
}

func TestGetListingsDetailFetchFailureDegradesToEmpty(t *testing.T) {
	fetcher := &stubFetcher{
		fetchPins: func(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
			return []domain.ListingPin{{PK: 1}}, nil
		},
		fetchDetails: func(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
			return nil, &domain.TransportError{Err: errors.New("connection reset")}
		},
	}

	uc := NewGetListingsUseCase(fetcher)
	listings := uc.Execute(context.Background(), "https://flatfox.ch/de/search/?min_price=1")

	if len(listings) != 0 {
		t.Fatalf("expected empty result, got %d listings", len(listings))
	}
}

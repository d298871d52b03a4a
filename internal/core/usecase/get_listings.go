package usecase

import (
	"context"

	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"
)

// GetListingsUseCase инкапсулирует полный конвейер получения объявлений:
// разбор поискового URL, обнаружение идентификаторов, загрузку деталей
// и клиентскую фильтрацию по границам поиска
type GetListingsUseCase struct {
	fetcherRepo port.FlatfoxFetcherPort
}

// NewGetListingsUseCase создает новый экземпляр GetListingsUseCase
func NewGetListingsUseCase(fetcher port.FlatfoxFetcherPort) *GetListingsUseCase {
	return &GetListingsUseCase{
		fetcherRepo: fetcher,
	}
}

// Execute запускает конвейер. Ошибок наружу не возвращает: любой сбой
// логируется и деградирует до пустого (или частичного) результата,
// чтобы один неудачный проход не ронял обработку задачи целиком.
func (uc *GetListingsUseCase) Execute(ctx context.Context, searchURL string) []domain.Listing {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "GetListings",
	})

	params, err := domain.ExtractSearchParams(searchURL)
	if err != nil {
		ucLogger.Error("Invalid search URL, skipping run", err, port.Fields{"url": searchURL})
		return nil
	}

	// Границы, по которым pin-эндпоинт фильтрует неточно: после загрузки
	// деталей перепроверяем их на своей стороне
	bounds := domain.ParseFilterBounds(params)

	pins, err := uc.fetcherRepo.FetchPins(ctx, params)
	if err != nil {
		ucLogger.Error("Failed to fetch pins, skipping run", err, nil)
		return nil
	}

	if len(pins) == 0 {
		ucLogger.Info("No pins found for search", nil)
		return nil
	}

	listings, err := uc.fetcherRepo.FetchDetails(ctx, pins)
	if err != nil {
		ucLogger.Error("Failed to fetch details, skipping run", err, nil)
		return nil
	}

	// Клиентская перефильтрация: pin-эндпоинт может вернуть объявления
	// вне запрошенных границ комнат/цены
	filtered := make([]domain.Listing, 0, len(listings))
	for _, listing := range listings {
		if bounds.Allows(listing) {
			filtered = append(filtered, listing)
		}
	}

	ucLogger.Info("Finished listings pipeline", port.Fields{
		"pins_found":      len(pins),
		"listings_built":  len(listings),
		"after_refilter":  len(filtered),
	})

	return filtered
}

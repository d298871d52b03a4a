package port

import (
	"context"
	"flatfox-parser-service/internal/core/domain"
)

// FlatfoxFetcherPort объединяет все операции двухэтапного получения
// данных от flatfox: обнаружение идентификаторов через pin-эндпоинт
// и пакетная загрузка полных записей.
type FlatfoxFetcherPort interface {
	// FetchPins извлекает идентификаторы объявлений, соответствующих
	// параметрам поиска. Порядок - порядок ответа pin-эндпоинта.
	FetchPins(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error)

	// FetchDetails загружает полные записи для набора идентификаторов.
	// Неудачные батчи пропускаются, поэтому записей может вернуться
	// меньше, чем запрошено идентификаторов.
	FetchDetails(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error)
}

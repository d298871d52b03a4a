package port

import (
	"context"
	"flatfox-parser-service/internal/core/domain"
)

// ListingSourcePort - контракт источника объявлений, видимый реестру
// провайдеров. Общая форма для всех источников: {enabled, метаданные,
// нормализация идентичности, фильтр, точка входа получения данных}.
// Полей для HTML-скрейпинга (селекторы, контейнеры) здесь нет -
// API-источники их не используют, это отдельный вариант контракта.
type ListingSourcePort interface {
	// Metadata возвращает статические метаданные источника.
	Metadata() domain.SourceMetadata

	// Enabled сообщает, включен ли источник конфигурацией.
	Enabled() bool

	// SourceURL возвращает пользовательскую поисковую ссылку источника.
	SourceURL() string

	// Normalize назначает объявлению каноническую идентичность
	// (content-hash от id источника и цены).
	Normalize(listing domain.Listing) domain.Listing

	// Filter возвращает true, если объявление проходит blacklist-фильтр.
	Filter(listing domain.Listing) bool

	// FetchListings запускает конвейер получения данных. Никогда не
	// возвращает ошибку наружу: любой сбой логируется и деградирует
	// до пустого (или частичного) результата.
	FetchListings(ctx context.Context) []domain.Listing
}

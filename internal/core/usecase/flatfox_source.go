package usecase

import (
	"context"
	"strings"

	"flatfox-parser-service/internal/constants"
	"flatfox-parser-service/internal/core/domain"
	usecases_port "flatfox-parser-service/internal/core/port/usecases"
)

// FlatfoxSource - представление flatfox как источника объявлений.
// Связывает метаданные, пользовательские настройки, blacklist-фильтр
// и конвейер получения данных в один объект с общим контрактом.
type FlatfoxSource struct {
	settings  domain.SourceSettings
	blacklist domain.Blacklist
	pipeline  usecases_port.GetListingsPort
}

// NewFlatfoxSource создает новый экземпляр FlatfoxSource
func NewFlatfoxSource(settings domain.SourceSettings, blacklist domain.Blacklist, pipeline usecases_port.GetListingsPort) *FlatfoxSource {
	return &FlatfoxSource{
		settings:  settings,
		blacklist: blacklist,
		pipeline:  pipeline,
	}
}

// Metadata возвращает статические метаданные источника
func (s *FlatfoxSource) Metadata() domain.SourceMetadata {
	return domain.SourceMetadata{
		Name:    constants.SourceName,
		BaseURL: constants.ListingHost,
		ID:      constants.SourceID,
	}
}

// Enabled сообщает, включен ли источник конфигурацией
func (s *FlatfoxSource) Enabled() bool {
	return s.settings.Enabled
}

// SourceURL возвращает настроенную поисковую ссылку источника
func (s *FlatfoxSource) SourceURL() string {
	return s.settings.URL
}

// Normalize назначает объявлению каноническую идентичность и приводит
// текстовые поля к опрятному виду
func (s *FlatfoxSource) Normalize(listing domain.Listing) domain.Listing {
	listing.Title = strings.TrimSpace(listing.Title)
	listing.Description = strings.TrimSpace(listing.Description)
	listing.Address = strings.TrimSpace(listing.Address)
	listing.Fingerprint = domain.ListingFingerprint(listing.SourceID, listing.Price)
	return listing
}

// Filter возвращает true, если объявление проходит blacklist-фильтр
func (s *FlatfoxSource) Filter(listing domain.Listing) bool {
	return s.blacklist.Allows(listing)
}

// FetchListings запускает конвейер с настроенной поисковой ссылкой
func (s *FlatfoxSource) FetchListings(ctx context.Context) []domain.Listing {
	return s.pipeline.Execute(ctx, s.settings.URL)
}

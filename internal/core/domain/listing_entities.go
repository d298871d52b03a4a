package domain

// ListingPin - легковесная map-marker запись pin-эндпоинта.
// Из нее нам нужен только первичный ключ для последующего
// запроса деталей.
type ListingPin struct {
	PK int64
}

// Listing - нормализованное объявление, результат работы маппера.
// Fingerprint назначается отдельным шагом (Normalize) и служит
// канонической идентичностью объявления для агрегатора.
type Listing struct {
	Fingerprint string

	SourceID    int64
	Title       string
	Price       string
	Size        string
	Link        string
	Description string
	Address     string
	Image       string

	// Сырые числовые значения для клиентской фильтрации.
	// nil - поле отсутствовало в ответе API.
	PriceValue *float64
	RoomsCount *float64
}

// SourceMetadata - статические метаданные источника данных,
// видимые реестру провайдеров.
type SourceMetadata struct {
	Name    string
	BaseURL string
	ID      string
}

// SourceSettings - настройки источника, передаваемые при инициализации.
type SourceSettings struct {
	Enabled bool
	URL     string
}

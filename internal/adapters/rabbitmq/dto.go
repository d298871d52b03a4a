package rabbitmq

import (
	"github.com/google/uuid"
)

// SearchTaskDTO - входящая задача на сканирование. Содержит поисковый
// URL flatfox с параметрами, заданными пользователем.
type SearchTaskDTO struct {
	SearchURL string    `json:"search_url"`
	TaskID    uuid.UUID `json:"task_id"`
}

// ProcessedListingEventDTO - это структура контракта
// Она точно соответствует JSON-схеме
type ProcessedListingEventDTO struct {
	Source          string `json:"source"`
	SourceListingID int64  `json:"sourceListingId"`
	Fingerprint     string `json:"fingerprint"`

	Title       string `json:"title"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Image       string `json:"image,omitempty"`

	PriceValue *float64 `json:"priceValue,omitempty"`
	RoomsCount *float64 `json:"roomsCount,omitempty"`

	TaskID uuid.UUID `json:"task_id"`
}

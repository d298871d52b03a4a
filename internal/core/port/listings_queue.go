package port

import (
	"context"
	"flatfox-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// ProcessedListingsQueuePort определяет контракт для отправки
// обработанных объявлений в очередь.
type ProcessedListingsQueuePort interface {
	Enqueue(ctx context.Context, listing domain.Listing, taskID uuid.UUID) error
}

package usecases_port

import (
	"context"
	"flatfox-parser-service/internal/core/domain"
)

type GetListingsPort interface {
	Execute(ctx context.Context, searchURL string) []domain.Listing
}

package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

type ProcessSearchTaskPort interface {
	Execute(ctx context.Context, searchURL string, taskID uuid.UUID) error
}

package ports

import (
	"context"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// OperatorRepository defines persistence for API operators.
type OperatorRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Operator, error)
	Create(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}

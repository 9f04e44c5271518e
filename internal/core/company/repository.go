package company

import (
	"context"

	"github.com/google/uuid"
)

// Repository は会社エンティティの永続化を行うインターフェースです。
// trackChanges が true の場合、取得したエンティティへの変更は次回の Save で反映されます。
type Repository interface {
	FindAll(ctx context.Context, trackChanges bool) ([]*Company, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID, trackChanges bool) ([]*Company, error)
	FindByID(ctx context.Context, id uuid.UUID, trackChanges bool) (*Company, error)
	Create(company *Company)
	Update(company *Company)
	Delete(company *Company)
}

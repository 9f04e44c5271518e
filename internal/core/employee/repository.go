package employee

import (
	"context"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/core/paging"
)

// Repository は社員永続化の抽象です。社員の参照は常に会社 ID と社員 ID の組で行います。
// Create / Update / Delete は作業単位へ変更を記録するだけで、書き込みは Save 時に行われます。
type Repository interface {
	List(ctx context.Context, companyID uuid.UUID, params Parameters, trackChanges bool) (*paging.PagedList[Employee], error)
	FindByID(ctx context.Context, companyID, id uuid.UUID, trackChanges bool) (*Employee, error)
	CreateForCompany(companyID uuid.UUID, employee *Employee)
	Update(employee *Employee)
	Delete(employee *Employee)
}

package store

import (
	"context"

	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
)

// Manager はリクエスト単位の作業単位です。リポジトリへの記録は Save でまとめて反映されます。
type Manager interface {
	Company() company.Repository
	Employee() employee.Repository
	Save(ctx context.Context) error
}

// Factory はリクエストごとに新しい Manager を生成します。
type Factory func() Manager

package company

import (
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
)

// Company は会社エンティティです。
// Employees は会社と同時に作成する社員を保持する場合にのみ使用され、読み込み時には設定されません。
type Company struct {
	ID        uuid.UUID
	Name      string
	Address   string
	Country   string
	Employees []*employee.Employee
}

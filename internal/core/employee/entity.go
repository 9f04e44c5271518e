package employee

import "github.com/google/uuid"

// Employee は社員エンティティです。社員は必ずひとつの会社に所属します。
type Employee struct {
	ID        uuid.UUID
	Name      string
	Age       int
	Position  string
	CompanyID uuid.UUID
}

package dto

import "github.com/google/uuid"

// Employee は社員のレスポンス表現です。
type Employee struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Age      int       `json:"age"`
	Position string    `json:"position"`
}

// EmployeeForCreation は社員の作成リクエストです。会社の作成時にも入れ子で使われます。
type EmployeeForCreation struct {
	Name     string `json:"name" validate:"required,max=30"`
	Age      int    `json:"age" validate:"required,gte=18,lte=2147483647"`
	Position string `json:"position" validate:"required,max=20"`
}

// EmployeeForUpdate は社員の全体更新と部分更新で使われます。部分更新ではパッチ適用後に検証されます。
type EmployeeForUpdate struct {
	Name     string `json:"name" validate:"required,max=30"`
	Age      int    `json:"age" validate:"required,gte=18,lte=2147483647"`
	Position string `json:"position" validate:"required,max=20"`
}

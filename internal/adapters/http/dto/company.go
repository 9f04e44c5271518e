package dto

import "github.com/google/uuid"

// Company は会社のレスポンス表現です。
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	FullAddress string    `json:"fullAddress"`
}

// CompanyForCreation は会社作成の入力です。employees を含めると社員も同時に作成されます。
type CompanyForCreation struct {
	Name      string                `json:"name" validate:"required,max=60"`
	Address   string                `json:"address" validate:"required,max=60"`
	Country   string                `json:"country"`
	Employees []EmployeeForCreation `json:"employees" validate:"omitempty,dive"`
}

// CompanyForUpdate は会社更新の入力です。employees に含まれる社員は新規に追加されます。
type CompanyForUpdate struct {
	Name      string                `json:"name" validate:"required,max=60"`
	Address   string                `json:"address" validate:"required,max=60"`
	Country   string                `json:"country"`
	Employees []EmployeeForCreation `json:"employees" validate:"omitempty,dive"`
}

// Message は更新・削除結果の通知です。
type Message struct {
	Message string `json:"message"`
}

package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrInvalidCompany は会社の値が制約を満たさない場合に返却されます。
	ErrInvalidCompany = errors.New("invalid company")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrIDsMismatch は一括取得で解決できない ID が含まれていた場合に返却されます。
	ErrIDsMismatch = errors.New("some ids are not valid in a collection")
)

package employee

import "errors"

var (
	// ErrEmployeeNotFound は社員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrCompanyNotFound は所属先の会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrInvalidEmployee は社員の値が制約を満たさない場合に返却されます。
	ErrInvalidEmployee = errors.New("invalid employee")
	// ErrInvalidAgeRange は年齢範囲の下限が上限を超えている場合に返却されます。
	ErrInvalidAgeRange = errors.New("max age can't be less than min age")
	// ErrInvalidPageNumber はページ番号が 1 未満の場合に返却されます。
	ErrInvalidPageNumber = errors.New("page number must be greater than zero")
	// ErrInvalidPageSize はページサイズが 1 未満の場合に返却されます。
	ErrInvalidPageSize = errors.New("page size must be greater than zero")
)

package employee

import (
	"math"
	"strings"
)

const (
	// MaxPageSize はページサイズの上限です。上限を超える指定は切り詰められます。
	MaxPageSize = 50

	defaultPageNumber = 1
	defaultPageSize   = 10
	defaultOrderBy    = "name"
)

// Parameters は社員一覧の検索条件です。永続化はされません。
type Parameters struct {
	MinAge     int
	MaxAge     int
	OrderBy    string
	SearchTerm string
	PageNumber int
	PageSize   int
	Fields     string
}

// DefaultParameters は既定値で初期化された検索条件を返します。
func DefaultParameters() Parameters {
	return Parameters{
		MinAge:     0,
		MaxAge:     math.MaxInt32,
		OrderBy:    defaultOrderBy,
		PageNumber: defaultPageNumber,
		PageSize:   defaultPageSize,
	}
}

// SetPageSize はページサイズを上限で切り詰めて設定します。
func (p *Parameters) SetPageSize(size int) {
	p.PageSize = min(size, MaxPageSize)
}

// ValidAgeRange は年齢範囲の下限が上限を超えていないかを返します。
func (p Parameters) ValidAgeRange() bool {
	return p.MinAge <= p.MaxAge
}

// Validate は検索条件を検証します。ストアへの問い合わせ前に呼び出してください。
func (p Parameters) Validate() error {
	if !p.ValidAgeRange() {
		return ErrInvalidAgeRange
	}
	if p.PageNumber < 1 {
		return ErrInvalidPageNumber
	}
	if p.PageSize < 1 {
		return ErrInvalidPageSize
	}
	return nil
}

// SortField はソート可能な社員の属性です。
type SortField string

const (
	SortByName     SortField = "name"
	SortByAge      SortField = "age"
	SortByPosition SortField = "position"
)

var sortFields = map[string]SortField{
	"name":     SortByName,
	"age":      SortByAge,
	"position": SortByPosition,
}

// SortTerm はソートキーと方向の組です。
type SortTerm struct {
	Field      SortField
	Descending bool
}

// DefaultSort は有効なソートキーが無い場合に使われる並び順です。
var DefaultSort = []SortTerm{{Field: SortByName}}

// ParseOrderBy は "name desc, age" 形式の指定をソートキーの列に変換します。
// 未知の属性は無視され、有効なキーが一つも無い場合は DefaultSort を返します。
func ParseOrderBy(orderBy string) []SortTerm {
	var terms []SortTerm
	seen := make(map[SortField]struct{})

	for _, param := range strings.Split(orderBy, ",") {
		tokens := strings.Fields(param)
		if len(tokens) == 0 {
			continue
		}

		field, ok := sortFields[strings.ToLower(tokens[0])]
		if !ok {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}

		descending := len(tokens) > 1 && strings.EqualFold(tokens[len(tokens)-1], "desc")
		terms = append(terms, SortTerm{Field: field, Descending: descending})
	}

	if len(terms) == 0 {
		return DefaultSort
	}
	return terms
}

package paging

import "math"

// MetaData はページングのメタ情報です。レスポンス本文ではなく X-Pagination ヘッダーで返却されます。
type MetaData struct {
	CurrentPage int   `json:"CurrentPage"`
	TotalPages  int   `json:"TotalPages"`
	PageSize    int   `json:"PageSize"`
	TotalCount  int64 `json:"TotalCount"`
	HasPrevious bool  `json:"HasPrevious"`
	HasNext     bool  `json:"HasNext"`
}

// PagedList は 1 ページ分の結果とメタ情報を保持します。
type PagedList[T any] struct {
	Items    []*T
	MetaData MetaData
}

// New は取得済みの items と総件数から PagedList を構築します。
func New[T any](items []*T, totalCount int64, pageNumber, pageSize int) *PagedList[T] {
	totalPages := TotalPages(totalCount, pageSize)
	return &PagedList[T]{
		Items: items,
		MetaData: MetaData{
			CurrentPage: pageNumber,
			TotalPages:  totalPages,
			PageSize:    pageSize,
			TotalCount:  totalCount,
			HasPrevious: pageNumber > 1,
			HasNext:     pageNumber < totalPages,
		},
	}
}

// TotalPages は totalCount / pageSize の切り上げを返します。
func TotalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((totalCount + size - 1) / size)
}

// Offset はページ番号から読み飛ばす件数を求めます。件数が int に収まらない場合 ok は false です。
func Offset(pageNumber, pageSize int) (offset int, ok bool) {
	if pageNumber < 1 || pageSize < 1 {
		return 0, true
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (pageNumber - 1) * pageSize, true
}

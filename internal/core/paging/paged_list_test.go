package paging

import (
	"math"
	"testing"
)

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count int64
		size  int
		want  int
	}{
		{count: 0, size: 10, want: 0},
		{count: 1, size: 10, want: 1},
		{count: 10, size: 10, want: 1},
		{count: 11, size: 10, want: 2},
		{count: 101, size: 50, want: 3},
		{count: 5, size: 0, want: 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.count, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.count, tt.size, got, tt.want)
		}
	}
}

func TestNew_MetaData(t *testing.T) {
	t.Parallel()

	items := []*int{new(int), new(int)}
	list := New(items, 12, 2, 5)

	md := list.MetaData
	if md.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", md.TotalPages)
	}
	if !md.HasPrevious || !md.HasNext {
		t.Fatalf("expected previous and next pages, got %+v", md)
	}
	if md.CurrentPage != 2 || md.PageSize != 5 || md.TotalCount != 12 {
		t.Fatalf("unexpected metadata: %+v", md)
	}
	if len(list.Items) > md.PageSize {
		t.Fatalf("page holds more items than its size")
	}

	last := New(items, 12, 3, 5)
	if last.MetaData.HasNext {
		t.Fatalf("last page must not report a next page")
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pageNumber, pageSize int
		want                 int
		ok                   bool
	}{
		{pageNumber: 1, pageSize: 10, want: 0, ok: true},
		{pageNumber: 4, pageSize: 25, want: 75, ok: true},
		{pageNumber: 0, pageSize: 10, want: 0, ok: true},
		{pageNumber: math.MaxInt/10 + 2, pageSize: 10, ok: false},
		{pageNumber: math.MaxInt, pageSize: 50, ok: false},
	}

	for _, tt := range tests {
		got, ok := Offset(tt.pageNumber, tt.pageSize)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Offset(%d, %d) = (%d, %t), want (%d, %t)", tt.pageNumber, tt.pageSize, got, ok, tt.want, tt.ok)
		}
	}
}

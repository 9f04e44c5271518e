package postgres

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/ogurasousui/codex-company-employees/internal/core/paging"
	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

var errMultipleRows = errors.New("postgres: query returned more than one row")

// Query は未実行のクエリです。Where / OrderBy は新しい Query を返し、
// List / Single / Count / Page を呼ぶまで SQL は発行されません。
type Query[T any] struct {
	repo  *Repository[T]
	where []Condition
	order []string
	track bool
}

func (q *Query[T]) clone() *Query[T] {
	return &Query[T]{
		repo:  q.repo,
		where: slices.Clone(q.where),
		order: slices.Clone(q.order),
		track: q.track,
	}
}

// Where は条件を AND で追加します。
func (q *Query[T]) Where(cond Condition) *Query[T] {
	next := q.clone()
	next.where = append(next.where, cond)
	return next
}

// OrderBy は並び順を置き換えます。terms は "name ASC" のような列と方向の組です。
func (q *Query[T]) OrderBy(terms ...string) *Query[T] {
	next := q.clone()
	next.order = slices.Clone(terms)
	return next
}

func (q *Query[T]) render(base string) (string, []any) {
	where, args := renderWhere(q.where, nil)
	return base + where, args
}

func (q *Query[T]) renderSelect() (string, []any) {
	sql, args := q.render(q.repo.selectSQL)
	if len(q.order) > 0 {
		sql += " ORDER BY " + strings.Join(q.order, ", ")
	}
	return sql, args
}

// List はクエリを実行し全件を返します。
func (q *Query[T]) List(ctx context.Context) ([]*T, error) {
	sql, args := q.renderSelect()
	return q.fetch(ctx, sql, args)
}

// Single は 1 件を返します。該当が無ければ not found、複数あればエラーを返します。
func (q *Query[T]) Single(ctx context.Context) (*T, error) {
	sql, args := q.renderSelect()
	found, err := q.fetch(ctx, sql+" LIMIT 2", args)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, q.repo.table.notFound
	case 1:
		return found[0], nil
	default:
		return nil, errMultipleRows
	}
}

// Count は条件に一致する件数を返します。
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	sql, args := q.render(q.repo.countSQL)

	var count int64
	exec := pgdb.QueryerFromContext(ctx, q.repo.db)
	if err := exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, q.repo.table.translate(err)
	}
	return count, nil
}

// Page は件数を数えたうえで pageNumber ページ目の pageSize 件を取得します。
func (q *Query[T]) Page(ctx context.Context, pageNumber, pageSize int) (*paging.PagedList[T], error) {
	count, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset, ok := paging.Offset(pageNumber, pageSize)
	if !ok || count == 0 || int64(offset) >= count {
		return paging.New([]*T{}, count, pageNumber, pageSize), nil
	}

	sql, args := q.renderSelect()
	args = append(args, pageSize, offset)
	sql += " LIMIT " + placeholder(len(args)-1) + " OFFSET " + placeholder(len(args))

	items, err := q.fetch(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return paging.New(items, count, pageNumber, pageSize), nil
}

func (q *Query[T]) fetch(ctx context.Context, sql string, args []any) ([]*T, error) {
	exec := pgdb.QueryerFromContext(ctx, q.repo.db)
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, q.repo.table.translate(err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := q.repo.table.scan(rows)
		if err != nil {
			return nil, q.repo.table.translate(err)
		}
		if q.track {
			item = q.repo.attach(item)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, q.repo.table.translate(err)
	}

	return items, nil
}

package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

// table はエンティティとテーブルの対応です。columns[0] は主キー列で、values は columns と同じ順序で値を返します。
type table[T any] struct {
	name      string
	columns   []string
	key       func(*T) uuid.UUID
	setKey    func(*T, uuid.UUID)
	values    func(*T) []any
	scan      func(pgx.Row) (*T, error)
	notFound  error
	translate func(error) error
}

// Repository はエンティティ型ごとに生成される汎用リポジトリです。
// Create / Update / Delete は変更追跡に記録するだけで、書き込みは Manager.Save で行われます。
type Repository[T any] struct {
	db      pgdb.Queryer
	table   table[T]
	tracker *changeTracker

	selectSQL string
	countSQL  string
	insertSQL string
	updateSQL string
	deleteSQL string
}

func newRepository[T any](db pgdb.Queryer, t table[T], tracker *changeTracker) *Repository[T] {
	columns := strings.Join(t.columns, ", ")

	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = placeholder(i + 1)
	}

	assignments := make([]string, 0, len(t.columns)-1)
	for i, col := range t.columns[1:] {
		assignments = append(assignments, col+" = "+placeholder(i+1))
	}

	return &Repository[T]{
		db:        db,
		table:     t,
		tracker:   tracker,
		selectSQL: "SELECT " + columns + " FROM " + t.name,
		countSQL:  "SELECT COUNT(1) FROM " + t.name,
		insertSQL: "INSERT INTO " + t.name + " (" + columns + ") VALUES (" + strings.Join(placeholders, ", ") + ")",
		updateSQL: "UPDATE " + t.name + " SET " + strings.Join(assignments, ", ") + " WHERE " + t.columns[0] + " = " + placeholder(len(t.columns)),
		deleteSQL: "DELETE FROM " + t.name + " WHERE " + t.columns[0] + " = $1",
	}
}

// FindAll は全件を対象とする遅延クエリを返します。
func (r *Repository[T]) FindAll(trackChanges bool) *Query[T] {
	return &Query[T]{repo: r, track: trackChanges}
}

// FindByCondition は cond で絞り込んだ遅延クエリを返します。終端操作までデータベースには問い合わせません。
func (r *Repository[T]) FindByCondition(cond Condition, trackChanges bool) *Query[T] {
	return r.FindAll(trackChanges).Where(cond)
}

// Create は e を追加対象として記録します。主キーが未設定の場合はここで採番します。
func (r *Repository[T]) Create(e *T) {
	if r.table.key(e) == uuid.Nil {
		r.table.setKey(e, uuid.New())
	}
	r.tracker.add(r.entry(e))
}

// Update は何もしません。追跡中のエンティティの変更は Save 時にスナップショットとの差分で検出されます。
func (r *Repository[T]) Update(*T) {}

// Delete は e を削除対象として記録します。
func (r *Repository[T]) Delete(e *T) {
	r.tracker.remove(r.entry(e))
}

func (r *Repository[T]) entry(e *T) *trackedEntity {
	return &trackedEntity{
		ref:      e,
		identity: r.table.name + ":" + r.table.key(e).String(),
		values:   func() []any { return r.table.values(e) },
		insert:   func(ctx context.Context, q pgdb.Queryer) error { return r.insert(ctx, q, e) },
		update:   func(ctx context.Context, q pgdb.Queryer) error { return r.update(ctx, q, e) },
		delete:   func(ctx context.Context, q pgdb.Queryer) error { return r.delete(ctx, q, e) },
	}
}

// attach は読み込んだエンティティを追跡し、同一エンティティが追跡済みならそのインスタンスを返します。
func (r *Repository[T]) attach(e *T) *T {
	tracked := r.tracker.attach(r.entry(e))
	return tracked.ref.(*T)
}

func (r *Repository[T]) insert(ctx context.Context, q pgdb.Queryer, e *T) error {
	if _, err := q.Exec(ctx, r.insertSQL, r.table.values(e)...); err != nil {
		return r.table.translate(err)
	}
	return nil
}

func (r *Repository[T]) update(ctx context.Context, q pgdb.Queryer, e *T) error {
	values := r.table.values(e)
	args := append(values[1:len(values):len(values)], values[0])
	tag, err := q.Exec(ctx, r.updateSQL, args...)
	if err != nil {
		return r.table.translate(err)
	}
	if tag.RowsAffected() == 0 {
		return r.table.notFound
	}
	return nil
}

func (r *Repository[T]) delete(ctx context.Context, q pgdb.Queryer, e *T) error {
	tag, err := q.Exec(ctx, r.deleteSQL, r.table.key(e))
	if err != nil {
		return r.table.translate(err)
	}
	if tag.RowsAffected() == 0 {
		return r.table.notFound
	}
	return nil
}

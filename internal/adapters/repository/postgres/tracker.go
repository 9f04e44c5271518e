package postgres

import (
	"context"
	"slices"

	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

type entityState int

const (
	stateUnchanged entityState = iota
	stateAdded
	stateDeleted
)

// trackedEntity は変更追跡の対象となったエンティティです。
// ref はエンティティへのポインタで、values はその時点の列値を返します。
type trackedEntity struct {
	ref      any
	identity string
	state    entityState
	snapshot []any
	values   func() []any
	insert   func(ctx context.Context, q pgdb.Queryer) error
	update   func(ctx context.Context, q pgdb.Queryer) error
	delete   func(ctx context.Context, q pgdb.Queryer) error
}

func (e *trackedEntity) modified() bool {
	if e.state != stateUnchanged {
		return false
	}
	current := e.values()
	if len(current) != len(e.snapshot) {
		return true
	}
	for i := range current {
		if current[i] != e.snapshot[i] {
			return true
		}
	}
	return false
}

// changeTracker はリクエスト単位で追加・削除・変更を記録し、Save 時に登録順で反映します。
// 同一テーブル・同一 ID のエンティティは一つのインスタンスに解決されます。
type changeTracker struct {
	entries    []*trackedEntity
	byRef      map[any]*trackedEntity
	byIdentity map[string]*trackedEntity
}

func newChangeTracker() *changeTracker {
	return &changeTracker{
		byRef:      make(map[any]*trackedEntity),
		byIdentity: make(map[string]*trackedEntity),
	}
}

// attach は読み込んだエンティティを追跡対象にします。既に追跡中の同一エンティティがあればそれを返します。
func (t *changeTracker) attach(e *trackedEntity) *trackedEntity {
	if existing, ok := t.byIdentity[e.identity]; ok {
		return existing
	}
	e.state = stateUnchanged
	e.snapshot = e.values()
	t.register(e)
	return e
}

func (t *changeTracker) add(e *trackedEntity) {
	if existing, ok := t.byRef[e.ref]; ok {
		if existing.state == stateDeleted {
			existing.state = stateUnchanged
		}
		return
	}
	e.state = stateAdded
	t.register(e)
}

func (t *changeTracker) remove(e *trackedEntity) {
	existing, ok := t.byRef[e.ref]
	if !ok {
		e.state = stateDeleted
		t.register(e)
		return
	}
	if existing.state == stateAdded {
		t.detach(existing)
		return
	}
	existing.state = stateDeleted
}

func (t *changeTracker) register(e *trackedEntity) {
	t.entries = append(t.entries, e)
	t.byRef[e.ref] = e
	t.byIdentity[e.identity] = e
}

func (t *changeTracker) detach(e *trackedEntity) {
	delete(t.byRef, e.ref)
	delete(t.byIdentity, e.identity)
	t.entries = slices.DeleteFunc(t.entries, func(x *trackedEntity) bool { return x == e })
}

func (t *changeTracker) hasChanges() bool {
	for _, e := range t.entries {
		if e.state != stateUnchanged || e.modified() {
			return true
		}
	}
	return false
}

// flush は記録された変更を登録順に q へ書き込みます。
func (t *changeTracker) flush(ctx context.Context, q pgdb.Queryer) error {
	for _, e := range t.entries {
		var err error
		switch {
		case e.state == stateAdded:
			err = e.insert(ctx, q)
		case e.state == stateDeleted:
			err = e.delete(ctx, q)
		case e.modified():
			err = e.update(ctx, q)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// acceptChanges は書き込み成功後に状態を確定させます。
func (t *changeTracker) acceptChanges() {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.state == stateDeleted {
			delete(t.byRef, e.ref)
			delete(t.byIdentity, e.identity)
			continue
		}
		e.state = stateUnchanged
		e.snapshot = e.values()
		kept = append(kept, e)
	}
	t.entries = kept
}

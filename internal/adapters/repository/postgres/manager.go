package postgres

import (
	"context"

	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	"github.com/ogurasousui/codex-company-employees/internal/core/store"
	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

// Manager はリクエスト単位の作業単位です。リポジトリは初回アクセス時に生成され、
// 記録された変更は Save で一つの読み書きトランザクションとして反映されます。
type Manager struct {
	db      pgdb.DB
	tx      *pgdb.TransactionManager
	tracker *changeTracker

	company  *CompanyRepository
	employee *EmployeeRepository
}

// NewManager は Manager を生成します。db はリクエスト間で共有されるプールです。
func NewManager(db pgdb.DB) *Manager {
	return &Manager{
		db:      db,
		tx:      pgdb.NewTransactionManager(db),
		tracker: newChangeTracker(),
	}
}

// NewManagerFactory はリクエストごとに新しい Manager を生成する store.Factory を返します。
func NewManagerFactory(db pgdb.DB) store.Factory {
	return func() store.Manager {
		return NewManager(db)
	}
}

// Company は会社リポジトリを返します。
func (m *Manager) Company() company.Repository {
	if m.company == nil {
		m.company = newCompanyRepository(m.db, m.tracker)
	}
	return m.company
}

// Employee は社員リポジトリを返します。
func (m *Manager) Employee() employee.Repository {
	if m.employee == nil {
		m.employee = newEmployeeRepository(m.db, m.tx, m.tracker)
	}
	return m.employee
}

// Save は記録された全ての変更を反映します。変更が無い場合はトランザクションを開始しません。
func (m *Manager) Save(ctx context.Context) error {
	if !m.tracker.hasChanges() {
		return nil
	}

	err := m.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return m.tracker.flush(txCtx, pgdb.QueryerFromContext(txCtx, m.db))
	})
	if err != nil {
		return err
	}

	m.tracker.acceptChanges()
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	"github.com/ogurasousui/codex-company-employees/internal/core/paging"
	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

var employeeTable = table[employee.Employee]{
	name:    "employees",
	columns: []string{"id", "name", "age", "position", "company_id"},
	key:     func(e *employee.Employee) uuid.UUID { return e.ID },
	setKey:  func(e *employee.Employee, id uuid.UUID) { e.ID = id },
	values: func(e *employee.Employee) []any {
		return []any{e.ID, e.Name, e.Age, e.Position, e.CompanyID}
	},
	scan:      scanEmployee,
	notFound:  employee.ErrEmployeeNotFound,
	translate: translateEmployeePgError,
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	employees *Repository[employee.Employee]
	tx        *pgdb.TransactionManager
}

func newEmployeeRepository(db pgdb.Queryer, tx *pgdb.TransactionManager, tracker *changeTracker) *EmployeeRepository {
	return &EmployeeRepository{
		employees: newRepository(db, employeeTable, tracker),
		tx:        tx,
	}
}

// List は会社に所属する社員を絞り込み・検索・並び替えたうえでページ単位で取得します。
// 件数と取得結果が同じスナップショットになるよう、読み取り専用トランザクション内で実行します。
// params は呼び出し側で検証済みであることを前提とします。
func (r *EmployeeRepository) List(ctx context.Context, companyID uuid.UUID, params employee.Parameters, trackChanges bool) (*paging.PagedList[employee.Employee], error) {
	q := r.employees.FindByCondition(Eq("company_id", companyID), trackChanges)
	q = filterEmployees(q, params.MinAge, params.MaxAge)
	q = searchEmployees(q, params.SearchTerm)
	q = sortEmployees(q, params.OrderBy)

	var page *paging.PagedList[employee.Employee]
	err := r.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		page, err = q.Page(txCtx, params.PageNumber, params.PageSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindByID は会社 ID と社員 ID の組で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, companyID, id uuid.UUID, trackChanges bool) (*employee.Employee, error) {
	return r.employees.
		FindByCondition(Eq("company_id", companyID), trackChanges).
		Where(Eq("id", id)).
		Single(ctx)
}

// CreateForCompany は社員を companyID の会社に所属させ、追加対象として記録します。
func (r *EmployeeRepository) CreateForCompany(companyID uuid.UUID, e *employee.Employee) {
	e.CompanyID = companyID
	r.employees.Create(e)
}

// Update は社員の変更を記録します。
func (r *EmployeeRepository) Update(e *employee.Employee) {
	r.employees.Update(e)
}

// Delete は社員を削除対象として記録します。
func (r *EmployeeRepository) Delete(e *employee.Employee) {
	r.employees.Delete(e)
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var e employee.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Age, &e.Position, &e.CompanyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return employee.ErrCompanyNotFound
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%w: %s", employee.ErrInvalidEmployee, pgErr.Message)
		}
	}
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
)

var companyTable = table[company.Company]{
	name:    "companies",
	columns: []string{"id", "name", "address", "country"},
	key:     func(c *company.Company) uuid.UUID { return c.ID },
	setKey:  func(c *company.Company, id uuid.UUID) { c.ID = id },
	values: func(c *company.Company) []any {
		return []any{c.ID, c.Name, c.Address, nullableString(c.Country)}
	},
	scan:      scanCompany,
	notFound:  company.ErrCompanyNotFound,
	translate: translateCompanyPgError,
}

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	companies *Repository[company.Company]
	employees *Repository[employee.Employee]
}

func newCompanyRepository(db pgdb.Queryer, tracker *changeTracker) *CompanyRepository {
	return &CompanyRepository{
		companies: newRepository(db, companyTable, tracker),
		employees: newRepository(db, employeeTable, tracker),
	}
}

// FindAll は全ての会社を名前順で取得します。
func (r *CompanyRepository) FindAll(ctx context.Context, trackChanges bool) ([]*company.Company, error) {
	return r.companies.FindAll(trackChanges).OrderBy("name ASC").List(ctx)
}

// FindByIDs は ids に含まれる会社を取得します。解決できなかった ID は結果に含まれません。
func (r *CompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, trackChanges bool) ([]*company.Company, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return r.companies.FindByCondition(In("id", values...), trackChanges).List(ctx)
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id uuid.UUID, trackChanges bool) (*company.Company, error) {
	return r.companies.FindByCondition(Eq("id", id), trackChanges).Single(ctx)
}

// Create は会社と、同時に渡された社員を追加対象として記録します。
func (r *CompanyRepository) Create(c *company.Company) {
	r.companies.Create(c)
	r.createEmployees(c)
}

// Update は会社の変更を記録します。ID 未設定の社員は新規社員として追加されます。
func (r *CompanyRepository) Update(c *company.Company) {
	r.companies.Update(c)
	r.createEmployees(c)
}

// Delete は会社を削除対象として記録します。
func (r *CompanyRepository) Delete(c *company.Company) {
	r.companies.Delete(c)
}

func (r *CompanyRepository) createEmployees(c *company.Company) {
	for _, e := range c.Employees {
		if e == nil || e.ID != uuid.Nil {
			continue
		}
		e.CompanyID = c.ID
		r.employees.Create(e)
	}
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id      uuid.UUID
		name    string
		address string
		country sql.NullString
	)

	if err := row.Scan(&id, &name, &address, &country); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	return &company.Company{
		ID:      id,
		Name:    name,
		Address: address,
		Country: country.String,
	}, nil
}

func translateCompanyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%w: %s", company.ErrInvalidCompany, pgErr.Message)
		}
	}
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

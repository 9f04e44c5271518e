package handler

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	"github.com/ogurasousui/codex-company-employees/internal/core/paging"
	"github.com/ogurasousui/codex-company-employees/internal/core/store"
)

// fakeStore はハンドラーテスト用のインメモリストアです。
type fakeStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]company.Company
	employees map[uuid.UUID]employee.Employee

	saves      int
	saveErr    error
	lookups    int
	listParams *employee.Parameters
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[uuid.UUID]company.Company),
		employees: make(map[uuid.UUID]employee.Employee),
	}
}

func (s *fakeStore) factory() store.Factory {
	return func() store.Manager { return &fakeManager{store: s} }
}

func (s *fakeStore) addCompany(name, address, country string) company.Company {
	c := company.Company{ID: uuid.New(), Name: name, Address: address, Country: country}
	s.companies[c.ID] = c
	return c
}

func (s *fakeStore) addEmployee(companyID uuid.UUID, name string, age int, position string) employee.Employee {
	e := employee.Employee{ID: uuid.New(), Name: name, Age: age, Position: position, CompanyID: companyID}
	s.employees[e.ID] = e
	return e
}

type fakeManager struct {
	store *fakeStore

	addedCompanies   []*company.Company
	updatedCompanies []*company.Company
	deletedCompanies []*company.Company
	addedEmployees   []*employee.Employee
	updatedEmployees []*employee.Employee
	deletedEmployees []*employee.Employee
}

func (m *fakeManager) Company() company.Repository   { return fakeCompanyRepository{m: m} }
func (m *fakeManager) Employee() employee.Repository { return fakeEmployeeRepository{m: m} }

func (m *fakeManager) Save(context.Context) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++

	for _, c := range append(m.addedCompanies, m.updatedCompanies...) {
		for _, e := range c.Employees {
			if e.ID == uuid.Nil {
				e.ID = uuid.New()
			}
			e.CompanyID = c.ID
			s.employees[e.ID] = *e
		}
		stored := *c
		stored.Employees = nil
		s.companies[c.ID] = stored
	}
	for _, c := range m.deletedCompanies {
		delete(s.companies, c.ID)
	}
	for _, e := range append(m.addedEmployees, m.updatedEmployees...) {
		s.employees[e.ID] = *e
	}
	for _, e := range m.deletedEmployees {
		delete(s.employees, e.ID)
	}
	return nil
}

type fakeCompanyRepository struct{ m *fakeManager }

func (r fakeCompanyRepository) FindAll(context.Context, bool) ([]*company.Company, error) {
	s := r.m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	out := make([]*company.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *company.Company) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r fakeCompanyRepository) FindByIDs(_ context.Context, ids []uuid.UUID, _ bool) ([]*company.Company, error) {
	s := r.m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	out := make([]*company.Company, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.companies[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeCompanyRepository) FindByID(_ context.Context, id uuid.UUID, _ bool) (*company.Company, error) {
	s := r.m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	c, ok := s.companies[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	return &c, nil
}

func (r fakeCompanyRepository) Create(c *company.Company) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.m.addedCompanies = append(r.m.addedCompanies, c)
}

func (r fakeCompanyRepository) Update(c *company.Company) {
	r.m.updatedCompanies = append(r.m.updatedCompanies, c)
}

func (r fakeCompanyRepository) Delete(c *company.Company) {
	r.m.deletedCompanies = append(r.m.deletedCompanies, c)
}

type fakeEmployeeRepository struct{ m *fakeManager }

func (r fakeEmployeeRepository) List(_ context.Context, companyID uuid.UUID, params employee.Parameters, _ bool) (*paging.PagedList[employee.Employee], error) {
	s := r.m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	s.listParams = &params

	matched := make([]*employee.Employee, 0)
	for _, e := range s.employees {
		if e.CompanyID == companyID && e.Age >= params.MinAge && e.Age <= params.MaxAge {
			matched = append(matched, &e)
		}
	}
	slices.SortFunc(matched, func(a, b *employee.Employee) int { return strings.Compare(a.Name, b.Name) })

	total := int64(len(matched))
	offset, ok := paging.Offset(params.PageNumber, params.PageSize)
	if !ok {
		offset = len(matched)
	}
	start := min(offset, len(matched))
	end := min(start+params.PageSize, len(matched))
	return paging.New(matched[start:end], total, params.PageNumber, params.PageSize), nil
}

func (r fakeEmployeeRepository) FindByID(_ context.Context, companyID, id uuid.UUID, _ bool) (*employee.Employee, error) {
	s := r.m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	e, ok := s.employees[id]
	if !ok || e.CompanyID != companyID {
		return nil, employee.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r fakeEmployeeRepository) CreateForCompany(companyID uuid.UUID, e *employee.Employee) {
	e.CompanyID = companyID
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.m.addedEmployees = append(r.m.addedEmployees, e)
}

func (r fakeEmployeeRepository) Update(e *employee.Employee) {
	r.m.updatedEmployees = append(r.m.updatedEmployees, e)
}

func (r fakeEmployeeRepository) Delete(e *employee.Employee) {
	r.m.deletedEmployees = append(r.m.deletedEmployees, e)
}

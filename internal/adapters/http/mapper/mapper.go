package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/dto"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
)

var (
	// ErrNoRule は型の組に対応する変換規則が登録されていないことを示します。
	ErrNoRule = errors.New("mapper: no mapping rule registered")
	// ErrNilSource は変換元が nil であることを示します。
	ErrNilSource = errors.New("mapper: source is nil")
)

type ruleKey struct {
	src reflect.Type
	dst reflect.Type
}

// Mapper はエンティティと DTO の変換規則表です。起動時に一度だけ構築し、以降は読み取り専用で共有します。
type Mapper struct {
	rules map[ruleKey]func(src, dst any)
}

// New は本アプリケーションの変換規則を登録した Mapper を返します。
func New() *Mapper {
	m := &Mapper{rules: make(map[ruleKey]func(src, dst any))}

	register(m, companyToDTO)
	register(m, employeeToDTO)
	register(m, func(src *dto.CompanyForCreation, dst *company.Company) {
		dst.Name = src.Name
		dst.Address = src.Address
		dst.Country = src.Country
		dst.Employees = append(dst.Employees, newEmployees(src.Employees)...)
	})
	register(m, func(src *dto.CompanyForUpdate, dst *company.Company) {
		dst.Name = src.Name
		dst.Address = src.Address
		dst.Country = src.Country
		dst.Employees = append(dst.Employees, newEmployees(src.Employees)...)
	})
	register(m, employeeFromCreation)
	register(m, func(src *dto.EmployeeForUpdate, dst *employee.Employee) {
		dst.Name = src.Name
		dst.Age = src.Age
		dst.Position = src.Position
	})
	register(m, func(src *employee.Employee, dst *dto.EmployeeForUpdate) {
		dst.Name = src.Name
		dst.Age = src.Age
		dst.Position = src.Position
	})

	return m
}

func register[S, D any](m *Mapper, fn func(*S, *D)) {
	key := ruleKey{src: reflect.TypeFor[S](), dst: reflect.TypeFor[D]()}
	m.rules[key] = func(src, dst any) { fn(src.(*S), dst.(*D)) }
}

// Map は src を新しい D に変換します。
func Map[S, D any](m *Mapper, src *S) (*D, error) {
	dst := new(D)
	if err := MapInto(m, src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// MapInto は src の値で既存の dst を上書きします。
func MapInto[S, D any](m *Mapper, src *S, dst *D) error {
	if src == nil {
		return ErrNilSource
	}
	rule, ok := m.rules[ruleKey{src: reflect.TypeFor[S](), dst: reflect.TypeFor[D]()}]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrNoRule, reflect.TypeFor[S](), reflect.TypeFor[D]())
	}
	rule(src, dst)
	return nil
}

// MapSlice は要素ごとに Map を適用します。nil 要素はエラーになります。
func MapSlice[S, D any](m *Mapper, src []*S) ([]*D, error) {
	out := make([]*D, 0, len(src))
	for _, s := range src {
		d, err := Map[S, D](m, s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func companyToDTO(src *company.Company, dst *dto.Company) {
	dst.ID = src.ID
	dst.Name = src.Name
	dst.FullAddress = fullAddress(src.Country, src.Address)
}

// fullAddress は国と住所を空白で連結します。空の要素は含めません。
func fullAddress(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func employeeToDTO(src *employee.Employee, dst *dto.Employee) {
	dst.ID = src.ID
	dst.Name = src.Name
	dst.Age = src.Age
	dst.Position = src.Position
}

func employeeFromCreation(src *dto.EmployeeForCreation, dst *employee.Employee) {
	dst.Name = src.Name
	dst.Age = src.Age
	dst.Position = src.Position
}

func newEmployees(src []dto.EmployeeForCreation) []*employee.Employee {
	out := make([]*employee.Employee, 0, len(src))
	for i := range src {
		e := &employee.Employee{}
		employeeFromCreation(&src[i], e)
		out = append(out, e)
	}
	return out
}

package postgres

import (
	"strings"

	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
)

var employeeSortColumns = map[employee.SortField]string{
	employee.SortByName:     "name",
	employee.SortByAge:      "age",
	employee.SortByPosition: "position",
}

// filterEmployees は年齢が [minAge, maxAge] に収まる社員に絞り込みます。
func filterEmployees(q *Query[employee.Employee], minAge, maxAge int) *Query[employee.Employee] {
	return q.Where(Between("age", minAge, maxAge))
}

// searchEmployees は名前の部分一致で絞り込みます。検索語が空白のみの場合は何もしません。
func searchEmployees(q *Query[employee.Employee], searchTerm string) *Query[employee.Employee] {
	term := strings.TrimSpace(searchTerm)
	if term == "" {
		return q
	}
	return q.Where(Contains("name", term))
}

// sortEmployees は orderBy の指定順に並べます。ページングを安定させるため最後に id を加えます。
func sortEmployees(q *Query[employee.Employee], orderBy string) *Query[employee.Employee] {
	terms := employee.ParseOrderBy(orderBy)

	clauses := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		direction := "ASC"
		if t.Descending {
			direction = "DESC"
		}
		clauses = append(clauses, employeeSortColumns[t.Field]+" "+direction)
	}
	clauses = append(clauses, "id ASC")

	return q.OrderBy(clauses...)
}

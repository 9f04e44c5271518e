package hateoas

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/dto"
)

// Link はリソースに対して実行可能な操作です。
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// LinkCollection はリンク付きエンティティの一覧とコレクション自身のリンクです。
type LinkCollection struct {
	Value []ShapedEntity `json:"value"`
	Links []Link         `json:"links"`
}

// LinkResponse は TryGenerateLinks の結果です。HasLinks が真なら LinkedEntities を、偽なら ShapedEntities を返却します。
type LinkResponse struct {
	HasLinks       bool
	ShapedEntities []ShapedEntity
	LinkedEntities *LinkCollection
}

// Body はレスポンス本文として返す値です。
func (r LinkResponse) Body() any {
	if r.HasLinks {
		return r.LinkedEntities
	}
	return r.ShapedEntities
}

// EmployeeLinks は社員一覧に HATEOAS リンクを付与します。
type EmployeeLinks struct {
	shaper *DataShaper[dto.Employee]
}

// NewEmployeeLinks は EmployeeLinks を生成します。
func NewEmployeeLinks() *EmployeeLinks {
	return &EmployeeLinks{shaper: NewDataShaper[dto.Employee]()}
}

// TryGenerateLinks は employees を fields で整形し、representation が RepresentationLinked の場合はリンクを付与します。
// companiesURL は会社コレクションの絶対 URL (例: http://localhost:8080/api/companies) です。
func (l *EmployeeLinks) TryGenerateLinks(employees []*dto.Employee, fields string, companyID uuid.UUID, representation Representation, companiesURL string) LinkResponse {
	shaped := l.shaper.ShapeData(employees, fields)
	if representation != RepresentationLinked {
		return LinkResponse{ShapedEntities: shaped}
	}

	companyURL := companiesURL + "/" + companyID.String()
	employeesURL := companyURL + "/employees"

	linked := make([]ShapedEntity, 0, len(shaped))
	for i, e := range employees {
		linked = append(linked, shaped[i].With("links", employeeLinks(employeesURL+"/"+e.ID.String(), fields)))
	}

	return LinkResponse{
		HasLinks: true,
		LinkedEntities: &LinkCollection{
			Value: linked,
			Links: []Link{
				{Href: employeesURL, Rel: "self", Method: "GET"},
				{Href: companyURL, Rel: "company", Method: "GET"},
			},
		},
	}
}

func employeeLinks(employeeURL, fields string) []Link {
	self := employeeURL
	if fields != "" {
		self += "?" + url.Values{"fields": {fields}}.Encode()
	}
	return []Link{
		{Href: self, Rel: "self", Method: "GET"},
		{Href: employeeURL, Rel: "delete_employee", Method: "DELETE"},
		{Href: employeeURL, Rel: "update_employee", Method: "PUT"},
		{Href: employeeURL, Rel: "partially_update_employee", Method: "PATCH"},
	}
}

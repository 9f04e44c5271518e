package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/dto"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/hateoas"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/mapper"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	"github.com/ogurasousui/codex-company-employees/internal/core/store"
	"go.uber.org/zap"
)

var (
	errInvalidQuery   = errors.New("invalid query parameter")
	errMalformedPatch = errors.New("patch document is not valid")
	errPatchFailed    = errors.New("patch document could not be applied")
)

// EmployeeHandler は /api/companies/:companyId/employees 配下の社員リソースを扱います。
type EmployeeHandler struct {
	managers store.Factory
	mapper   *mapper.Mapper
	links    *hateoas.EmployeeLinks
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(managers store.Factory, m *mapper.Mapper, links *hateoas.EmployeeLinks, v *validator.Validate, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{managers: managers, mapper: m, links: links, validate: v, logger: logger}
}

// Mount は社員のルートを r に登録します。r は /api/companies を指すルーターです。
func (h *EmployeeHandler) Mount(r fiber.Router) {
	r.Get("/:companyId/employees", h.GetEmployeesForCompany).Name(routeEmployeesForCompany)
	r.Post("/:companyId/employees", h.CreateEmployeeForCompany)
	r.Get("/:companyId/employees/:id", h.GetEmployeeForCompany).Name(routeEmployeeForCompany)
	r.Put("/:companyId/employees/:id", h.UpdateEmployeeForCompany)
	r.Patch("/:companyId/employees/:id", h.PartiallyUpdateEmployeeForCompany)
	r.Delete("/:companyId/employees/:id", h.DeleteEmployeeForCompany)
}

// GetEmployeesForCompany は会社の社員一覧を返します。
// 絞り込み・検索・並び替え・ページングに対応し、ページ情報は X-Pagination ヘッダーで返します。
func (h *EmployeeHandler) GetEmployeesForCompany(c *fiber.Ctx) error {
	ctxt := "EmployeeHandler-GetEmployeesForCompany"

	companyID, err := parseID(c.Params("companyId"))
	if err != nil {
		return err
	}
	params, err := parseParameters(c.Queries())
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	representation, err := hateoas.Negotiate(c.Get(fiber.HeaderAccept))
	if err != nil {
		h.logger.Info("unsupported media type",
			zap.String("context", ctxt),
			zap.String("accept", c.Get(fiber.HeaderAccept)),
		)
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	if _, err := findCompany(ctx, m, companyID, false, h.logger, ctxt); err != nil {
		return err
	}

	page, err := m.Employee().List(ctx, companyID, params, false)
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(page.MetaData)
	if err != nil {
		return err
	}
	c.Set(headerPagination, string(metadata))

	employees, err := mapper.MapSlice[employee.Employee, dto.Employee](h.mapper, page.Items)
	if err != nil {
		return err
	}

	companiesURL, err := c.GetRouteURL(routeCompanies, nil)
	if err != nil {
		return err
	}

	resp := h.links.TryGenerateLinks(employees, params.Fields, companyID, representation, c.BaseURL()+companiesURL)
	if resp.HasLinks {
		return c.JSON(resp.Body(), hateoas.MediaTypeHATEOAS)
	}
	return c.JSON(resp.Body())
}

// GetEmployeeForCompany は会社に所属する社員を 1 件返します。
func (h *EmployeeHandler) GetEmployeeForCompany(c *fiber.Ctx) error {
	companyID, id, err := employeeRoute(c)
	if err != nil {
		return err
	}

	found, err := h.findEmployee(c.UserContext(), h.managers(), companyID, id, false, "EmployeeHandler-GetEmployeeForCompany")
	if err != nil {
		return err
	}

	out, err := mapper.Map[employee.Employee, dto.Employee](h.mapper, found)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CreateEmployeeForCompany は会社に社員を追加します。会社が存在しない場合は何も書き込みません。
func (h *EmployeeHandler) CreateEmployeeForCompany(c *fiber.Ctx) error {
	companyID, err := parseID(c.Params("companyId"))
	if err != nil {
		return err
	}

	var in dto.EmployeeForCreation
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	if err := validate(h.validate, &in); err != nil {
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	if _, err := findCompany(ctx, m, companyID, false, h.logger, "EmployeeHandler-CreateEmployeeForCompany"); err != nil {
		return err
	}

	entity, err := mapper.Map[dto.EmployeeForCreation, employee.Employee](h.mapper, &in)
	if err != nil {
		return err
	}
	m.Employee().CreateForCompany(companyID, entity)
	if err := m.Save(ctx); err != nil {
		return err
	}

	out, err := mapper.Map[employee.Employee, dto.Employee](h.mapper, entity)
	if err != nil {
		return err
	}

	location, err := c.GetRouteURL(routeEmployeeForCompany, fiber.Map{
		"companyId": companyID.String(),
		"id":        out.ID.String(),
	})
	if err != nil {
		return err
	}
	c.Location(c.BaseURL() + location)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateEmployeeForCompany は社員を全体更新します。
func (h *EmployeeHandler) UpdateEmployeeForCompany(c *fiber.Ctx) error {
	companyID, id, err := employeeRoute(c)
	if err != nil {
		return err
	}

	var in dto.EmployeeForUpdate
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	if err := validate(h.validate, &in); err != nil {
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	found, err := h.findEmployee(ctx, m, companyID, id, true, "EmployeeHandler-UpdateEmployeeForCompany")
	if err != nil {
		return err
	}

	if err := mapper.MapInto(h.mapper, &in, found); err != nil {
		return err
	}
	m.Employee().Update(found)
	if err := m.Save(ctx); err != nil {
		return err
	}

	return c.JSON(dto.Message{Message: in.Name + " was updated"})
}

// PartiallyUpdateEmployeeForCompany は RFC 6902 の JSON Patch を社員に適用します。
func (h *EmployeeHandler) PartiallyUpdateEmployeeForCompany(c *fiber.Ctx) error {
	ctxt := "EmployeeHandler-PartiallyUpdateEmployeeForCompany"

	companyID, id, err := employeeRoute(c)
	if err != nil {
		return err
	}

	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		h.logger.Info("patch document sent from client is empty", zap.String("context", ctxt))
		return errEmptyBody
	}
	patch, err := jsonpatch.DecodePatch(body)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedPatch, err)
	}

	ctx := c.UserContext()
	m := h.managers()
	found, err := h.findEmployee(ctx, m, companyID, id, true, ctxt)
	if err != nil {
		return err
	}

	toPatch, err := mapper.Map[employee.Employee, dto.EmployeeForUpdate](h.mapper, found)
	if err != nil {
		return err
	}
	patched, err := applyPatch(patch, toPatch)
	if err != nil {
		h.logger.Info("invalid patch document", zap.String("context", ctxt), zap.Error(err))
		return err
	}
	if err := validate(h.validate, patched); err != nil {
		h.logger.Info("invalid model state for the patch document", zap.String("context", ctxt))
		return err
	}

	if err := mapper.MapInto(h.mapper, patched, found); err != nil {
		return err
	}
	m.Employee().Update(found)
	if err := m.Save(ctx); err != nil {
		return err
	}

	return c.JSON(dto.Message{Message: patched.Name + " was updated"})
}

// DeleteEmployeeForCompany は社員を削除します。
func (h *EmployeeHandler) DeleteEmployeeForCompany(c *fiber.Ctx) error {
	companyID, id, err := employeeRoute(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	found, err := h.findEmployee(ctx, m, companyID, id, false, "EmployeeHandler-DeleteEmployeeForCompany")
	if err != nil {
		return err
	}

	m.Employee().Delete(found)
	if err := m.Save(ctx); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// findEmployee は会社と社員の存在を順に確認し、社員のエンティティを返します。
func (h *EmployeeHandler) findEmployee(ctx context.Context, m store.Manager, companyID, id uuid.UUID, track bool, ctxt string) (*employee.Employee, error) {
	if _, err := findCompany(ctx, m, companyID, false, h.logger, ctxt); err != nil {
		return nil, err
	}

	found, err := m.Employee().FindByID(ctx, companyID, id, track)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		h.logger.Info("employee doesn't exist in the database",
			zap.String("context", ctxt),
			zap.Stringer("employee_id", id),
		)
	}
	return found, err
}

func employeeRoute(c *fiber.Ctx) (companyID, id uuid.UUID, err error) {
	if companyID, err = parseID(c.Params("companyId")); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = parseID(c.Params("id")); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return companyID, id, nil
}

func applyPatch(patch jsonpatch.Patch, target *dto.EmployeeForUpdate) (*dto.EmployeeForUpdate, error) {
	doc, err := json.Marshal(target)
	if err != nil {
		return nil, err
	}
	modified, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPatchFailed, err)
	}

	var out dto.EmployeeForUpdate
	if err := json.Unmarshal(modified, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", errPatchFailed, err)
	}
	return &out, nil
}

// parseParameters はクエリ文字列から社員一覧の検索条件を組み立てます。キーの大文字小文字は区別しません。
func parseParameters(query map[string]string) (employee.Parameters, error) {
	params := employee.DefaultParameters()

	for key, value := range query {
		var err error
		switch strings.ToLower(key) {
		case "minage":
			params.MinAge, err = parseQueryInt(key, value)
		case "maxage":
			params.MaxAge, err = parseQueryInt(key, value)
		case "pagenumber":
			params.PageNumber, err = parseQueryInt(key, value)
		case "pagesize":
			var size int
			size, err = parseQueryInt(key, value)
			params.SetPageSize(size)
		case "orderby":
			params.OrderBy = value
		case "searchterm":
			params.SearchTerm = value
		case "fields":
			params.Fields = value
		}
		if err != nil {
			return employee.Parameters{}, err
		}
	}

	return params, nil
}

// parseQueryInt は 32 ビット整数として値を解釈します。age 列が INTEGER のため範囲外は拒否します。
func parseQueryInt(key, value string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a 32-bit integer", errInvalidQuery, key)
	}
	return int(n), nil
}

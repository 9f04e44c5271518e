package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/dto"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/mapper"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/store"
	"go.uber.org/zap"
)

// CompanyHandler は /api/companies 配下の会社リソースを扱います。
type CompanyHandler struct {
	managers store.Factory
	mapper   *mapper.Mapper
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(managers store.Factory, m *mapper.Mapper, v *validator.Validate, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{managers: managers, mapper: m, validate: v, logger: logger}
}

// Mount は会社のルートを r に登録します。r は /api/companies を指すルーターです。
func (h *CompanyHandler) Mount(r fiber.Router) {
	r.Get("", h.GetCompanies).Name(routeCompanies)
	r.Post("", h.CreateCompany)
	r.Get("/collection/:ids", h.GetCompanyCollection).Name(routeCompanyCollection)
	r.Post("/collection", h.CreateCompanyCollection)
	r.Get("/:id", h.GetCompany).Name(routeCompanyByID)
	r.Put("/:id", h.UpdateCompany)
	r.Delete("/:id", h.DeleteCompany)
}

// GetCompanies は全ての会社を名前順で返します。
func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	companies, err := h.managers().Company().FindAll(c.UserContext(), false)
	if err != nil {
		return err
	}

	out, err := mapper.MapSlice[company.Company, dto.Company](h.mapper, companies)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetCompany は ID で会社を返します。
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	found, err := h.findCompany(c.UserContext(), h.managers(), id, false, "CompanyHandler-GetCompany")
	if err != nil {
		return err
	}

	out, err := mapper.Map[company.Company, dto.Company](h.mapper, found)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetCompanyCollection は "(id1,id2)" で指定された会社をまとめて返します。
// 一つでも解決できない ID があれば 400 を返します。
func (h *CompanyHandler) GetCompanyCollection(c *fiber.Ctx) error {
	ids, err := parseIDs(c.Params("ids"))
	if err != nil {
		return err
	}

	companies, err := h.managers().Company().FindByIDs(c.UserContext(), ids, false)
	if err != nil {
		return err
	}

	if len(companies) != len(distinct(ids)) {
		h.logger.Error("some ids are not valid in a collection",
			zap.String("context", "CompanyHandler-GetCompanyCollection"),
			zap.Int("requested", len(ids)),
			zap.Int("found", len(companies)),
		)
		return company.ErrIDsMismatch
	}

	out, err := mapper.MapSlice[company.Company, dto.Company](h.mapper, companies)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CreateCompany は会社を作成し、同時に渡された社員も作成します。
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var in dto.CompanyForCreation
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	if err := validate(h.validate, &in); err != nil {
		return err
	}

	entity, err := mapper.Map[dto.CompanyForCreation, company.Company](h.mapper, &in)
	if err != nil {
		return err
	}

	m := h.managers()
	m.Company().Create(entity)
	if err := m.Save(c.UserContext()); err != nil {
		return err
	}

	out, err := mapper.Map[company.Company, dto.Company](h.mapper, entity)
	if err != nil {
		return err
	}

	location, err := c.GetRouteURL(routeCompanyByID, fiber.Map{"id": out.ID.String()})
	if err != nil {
		return err
	}
	c.Location(c.BaseURL() + location)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateCompanyCollection は複数の会社を一度の保存で作成します。
func (h *CompanyHandler) CreateCompanyCollection(c *fiber.Ctx) error {
	var in []dto.CompanyForCreation
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	if len(in) == 0 {
		h.logger.Error("company collection sent from client is empty",
			zap.String("context", "CompanyHandler-CreateCompanyCollection"),
		)
		return errEmptyBody
	}

	fields := make(map[string]string)
	for i := range in {
		if err := validateStruct(h.validate, &in[i], indexPrefix(i), fields); err != nil {
			return err
		}
	}
	if len(fields) > 0 {
		return &validationError{fields: fields}
	}

	m := h.managers()
	entities := make([]*company.Company, 0, len(in))
	for i := range in {
		entity, err := mapper.Map[dto.CompanyForCreation, company.Company](h.mapper, &in[i])
		if err != nil {
			return err
		}
		m.Company().Create(entity)
		entities = append(entities, entity)
	}
	if err := m.Save(c.UserContext()); err != nil {
		return err
	}

	out, err := mapper.MapSlice[company.Company, dto.Company](h.mapper, entities)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	location, err := c.GetRouteURL(routeCompanyCollection, fiber.Map{"ids": joinIDs(ids)})
	if err != nil {
		return err
	}
	c.Location(c.BaseURL() + location)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateCompany は会社を更新します。employees に含まれる社員は新規に追加されます。
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	var in dto.CompanyForUpdate
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	if err := validate(h.validate, &in); err != nil {
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	found, err := h.findCompany(ctx, m, id, true, "CompanyHandler-UpdateCompany")
	if err != nil {
		return err
	}

	if err := mapper.MapInto(h.mapper, &in, found); err != nil {
		return err
	}
	m.Company().Update(found)
	if err := m.Save(ctx); err != nil {
		return err
	}

	return c.JSON(dto.Message{Message: found.Name + " was updated"})
}

// DeleteCompany は会社を削除します。所属する社員はデータベースの外部キー制約により削除されます。
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	m := h.managers()
	found, err := h.findCompany(ctx, m, id, false, "CompanyHandler-DeleteCompany")
	if err != nil {
		return err
	}

	m.Company().Delete(found)
	if err := m.Save(ctx); err != nil {
		return err
	}

	return c.JSON(dto.Message{Message: found.Name + " was deleted"})
}

func (h *CompanyHandler) findCompany(ctx context.Context, m store.Manager, id uuid.UUID, track bool, ctxt string) (*company.Company, error) {
	return findCompany(ctx, m, id, track, h.logger, ctxt)
}

// findCompany は会社の存在を確認し、存在すればそのエンティティを返します。
func findCompany(ctx context.Context, m store.Manager, id uuid.UUID, track bool, logger *zap.Logger, ctxt string) (*company.Company, error) {
	found, err := m.Company().FindByID(ctx, id, track)
	if errors.Is(err, company.ErrCompanyNotFound) {
		logger.Info("company doesn't exist in the database",
			zap.String("context", ctxt),
			zap.Stringer("company_id", id),
		)
	}
	return found, err
}

func distinct(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

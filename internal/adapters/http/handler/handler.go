package handler

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
)

const (
	routeCompanies             = "Companies"
	routeCompanyByID           = "CompanyById"
	routeCompanyCollection     = "CompanyCollection"
	routeEmployeesForCompany   = "GetEmployeesForCompany"
	routeEmployeeForCompany    = "GetEmployeeForCompany"
	headerPagination           = "X-Pagination"
	validationFailedMessage    = "validation failed"
	internalServerErrorMessage = "internal server error"
)

var (
	errEmptyBody     = errors.New("request body is empty")
	errMalformedBody = errors.New("request body is not valid json")
)

// validationError は入力検証の失敗です。fields は JSON フィールド名からメッセージへの対応です。
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", validationFailedMessage, len(e.fields))
}

// NewValidator は JSON タグ名でエラーを報告する validator を生成します。
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(v *validator.Validate, s any, prefix string, into map[string]string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		// 先頭の構造体名を除いた名前空間をキーにする
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		into[prefix+key] = ruleMessage(fe)
	}
	return nil
}

func validate(v *validator.Validate, s any) error {
	fields := make(map[string]string)
	if err := validateStruct(v, s, "", fields); err != nil {
		return err
	}
	if len(fields) > 0 {
		return &validationError{fields: fields}
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", fe.Field())
	case "max":
		return fmt.Sprintf("maximum length for %s is %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}

// decodeBody はリクエスト本文を out に読み込みます。空または null の本文は errEmptyBody です。
func decodeBody(c *fiber.Ctx, out any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", company.ErrInvalidID, raw)
	}
	return id, nil
}

// parseIDs は "(id1,id2)" または "id1,id2" 形式の ID 列を解析します。
func parseIDs(raw string) ([]uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: parameter ids is empty", company.ErrInvalidID)
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func indexPrefix(i int) string {
	return "[" + strconv.Itoa(i) + "]."
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

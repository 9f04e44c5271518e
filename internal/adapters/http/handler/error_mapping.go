package handler

import (
	"errors"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/hateoas"
	"github.com/ogurasousui/codex-company-employees/internal/core/company"
	"github.com/ogurasousui/codex-company-employees/internal/core/employee"
	"go.uber.org/zap"
)

// ErrorResponse はエラー時のレスポンス本文です。
type ErrorResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func toErrorResponse(err error) ErrorResponse {
	var verr *validationError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return ErrorResponse{Status: fiber.StatusUnprocessableEntity, Message: validationFailedMessage, Errors: verr.fields}
	case errors.As(err, &ferr):
		return ErrorResponse{Status: ferr.Code, Message: ferr.Message}
	case errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, employee.ErrCompanyNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		return ErrorResponse{Status: fiber.StatusNotFound, Message: err.Error()}
	case errors.Is(err, errEmptyBody),
		errors.Is(err, errMalformedBody),
		errors.Is(err, errMalformedPatch),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrIDsMismatch),
		errors.Is(err, employee.ErrInvalidAgeRange),
		errors.Is(err, employee.ErrInvalidPageNumber),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, errInvalidQuery),
		errors.Is(err, hateoas.ErrUnsupportedMediaType):
		return ErrorResponse{Status: fiber.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, company.ErrInvalidCompany),
		errors.Is(err, employee.ErrInvalidEmployee),
		errors.Is(err, errPatchFailed):
		return ErrorResponse{Status: fiber.StatusUnprocessableEntity, Message: err.Error()}
	default:
		return ErrorResponse{Status: fiber.StatusInternalServerError, Message: internalServerErrorMessage}
	}
}

// ErrorHandler はハンドラーが返したエラーをエラーレスポンスに変換する fiber.ErrorHandler を返します。
// 500 系のエラーはログに記録し、Sentry が有効な場合は送信します。
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := toErrorResponse(err)
		if resp.Status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("context", "Handler-ErrorHandler"),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			if hub := fibersentry.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
		}
		return c.Status(resp.Status).JSON(resp)
	}
}

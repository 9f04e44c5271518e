package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/dto"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/hateoas"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/mapper"
	"go.uber.org/zap"
)

func newTestApp(s *fakeStore) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler(zap.NewNop()),
	})

	m := mapper.New()
	v := NewValidator()
	logger := zap.NewNop()

	r := app.Group("/api/companies")
	NewCompanyHandler(s.factory(), m, v, logger).Mount(r)
	NewEmployeeHandler(s.factory(), m, hateoas.NewEmployeeLinks(), v, logger).Mount(r)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to decode %s: %v", raw, err)
	}
	return out
}

func TestCompanyHandler_GetCompanies(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	s.addCompany("IT_Solutions Ltd", "583 Wall Dr. Gwynn Oak, MD 21207", "USA")
	s.addCompany("Admin_Solutions Ltd", "312 Forest Avenue, BF 923", "")

	resp, raw := doRequest(t, newTestApp(s), http.MethodGet, "/api/companies", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}

	got := decode[[]dto.Company](t, raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(got))
	}
	if got[0].Name != "Admin_Solutions Ltd" || got[0].FullAddress != "312 Forest Avenue, BF 923" {
		t.Fatalf("unexpected first company: %+v", got[0])
	}
	if got[1].FullAddress != "USA 583 Wall Dr. Gwynn Oak, MD 21207" {
		t.Fatalf("unexpected full address: %q", got[1].FullAddress)
	}
}

func TestCompanyHandler_GetCompany(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	existing := s.addCompany("Acme", "Main St", "US")
	app := newTestApp(s)

	resp, raw := doRequest(t, app, http.MethodGet, "/api/companies/"+existing.ID.String(), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}
	if got := decode[dto.Company](t, raw); got.ID != existing.ID || got.FullAddress != "US Main St" {
		t.Fatalf("unexpected company: %+v", got)
	}

	resp, raw = doRequest(t, app, http.MethodGet, "/api/companies/"+uuid.NewString(), "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, raw); got.Status != fiber.StatusNotFound {
		t.Fatalf("unexpected error body: %+v", got)
	}

	resp, _ = doRequest(t, app, http.MethodGet, "/api/companies/not-a-uuid", "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCompanyHandler_GetCompanyCollection(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	first := s.addCompany("Acme", "Main St", "")
	second := s.addCompany("Globex", "Side St", "")
	app := newTestApp(s)

	target := "/api/companies/collection/(" + first.ID.String() + "," + second.ID.String() + ")"
	resp, raw := doRequest(t, app, http.MethodGet, target, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}
	if got := decode[[]dto.Company](t, raw); len(got) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(got))
	}

	target = "/api/companies/collection/(" + first.ID.String() + "," + uuid.NewString() + ")"
	if resp, _ := doRequest(t, app, http.MethodGet, target, ""); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unresolved id, got %d", resp.StatusCode)
	}

	if resp, _ := doRequest(t, app, http.MethodGet, "/api/companies/collection/()", ""); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty ids, got %d", resp.StatusCode)
	}
}

func TestCompanyHandler_CreateCompany(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	app := newTestApp(s)

	body := `{"name":"Acme","address":"Main St","country":"US","employees":[{"name":"Ann","age":30,"position":"Developer"}]}`
	resp, raw := doRequest(t, app, http.MethodPost, "/api/companies", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}

	got := decode[dto.Company](t, raw)
	if got.ID == uuid.Nil || got.FullAddress != "US Main St" {
		t.Fatalf("unexpected company: %+v", got)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "http://example.com/api/companies/"+got.ID.String() {
		t.Fatalf("unexpected location: %q", loc)
	}
	if s.saves != 1 || len(s.employees) != 1 {
		t.Fatalf("expected company and employee to be saved together, saves=%d employees=%d", s.saves, len(s.employees))
	}
}

func TestCompanyHandler_CreateCompanyRejectsInput(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	app := newTestApp(s)

	if resp, _ := doRequest(t, app, http.MethodPost, "/api/companies", ""); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", resp.StatusCode)
	}
	if resp, _ := doRequest(t, app, http.MethodPost, "/api/companies", "{"); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}

	body := `{"address":"` + strings.Repeat("x", 61) + `","employees":[{"name":"Ann","age":12,"position":"Developer"}]}`
	resp, raw := doRequest(t, app, http.MethodPost, "/api/companies", body)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", resp.StatusCode, raw)
	}

	got := decode[ErrorResponse](t, raw)
	for _, key := range []string{"name", "address", "employees[0].age"} {
		if _, ok := got.Errors[key]; !ok {
			t.Fatalf("expected error for %s, got %+v", key, got.Errors)
		}
	}
	if s.saves != 0 {
		t.Fatalf("invalid input must not be saved")
	}
}

func TestCompanyHandler_CreateCompanyCollection(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	app := newTestApp(s)

	body := `[{"name":"Acme","address":"Main St"},{"name":"Globex","address":"Side St"}]`
	resp, raw := doRequest(t, app, http.MethodPost, "/api/companies/collection", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}

	got := decode[[]dto.Company](t, raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(got))
	}
	wantLocation := "http://example.com/api/companies/collection/(" + got[0].ID.String() + "," + got[1].ID.String() + ")"
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != wantLocation {
		t.Fatalf("unexpected location: %q", loc)
	}
	if s.saves != 1 {
		t.Fatalf("expected a single save, got %d", s.saves)
	}

	if resp, _ := doRequest(t, app, http.MethodPost, "/api/companies/collection", "[]"); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty collection, got %d", resp.StatusCode)
	}

	resp, raw = doRequest(t, app, http.MethodPost, "/api/companies/collection", `[{"name":"Acme","address":"Main St"},{"name":"Globex"}]`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, raw); got.Errors["[1].address"] == "" {
		t.Fatalf("expected indexed validation error, got %+v", got.Errors)
	}
}

func TestCompanyHandler_UpdateCompany(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	existing := s.addCompany("Acme", "Main St", "US")
	app := newTestApp(s)

	body := `{"name":"Acme Holdings","address":"Main St","employees":[{"name":"Ann","age":30,"position":"Developer"}]}`
	resp, raw := doRequest(t, app, http.MethodPut, "/api/companies/"+existing.ID.String(), body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}
	if got := decode[dto.Message](t, raw); got.Message != "Acme Holdings was updated" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if stored := s.companies[existing.ID]; stored.Name != "Acme Holdings" || stored.Country != "" {
		t.Fatalf("unexpected stored company: %+v", stored)
	}
	if len(s.employees) != 1 {
		t.Fatalf("nested employee must be created on update")
	}

	resp, _ = doRequest(t, app, http.MethodPut, "/api/companies/"+uuid.NewString(), body)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCompanyHandler_DeleteCompany(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	existing := s.addCompany("Acme", "Main St", "US")
	app := newTestApp(s)

	resp, raw := doRequest(t, app, http.MethodDelete, "/api/companies/"+existing.ID.String(), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d %s", resp.StatusCode, raw)
	}
	if got := decode[dto.Message](t, raw); got.Message != "Acme was deleted" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if _, ok := s.companies[existing.ID]; ok {
		t.Fatalf("company must be removed")
	}

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/companies/"+existing.ID.String(), "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	s.saveErr = errors.New("connection reset by peer")
	app := newTestApp(s)

	resp, raw := doRequest(t, app, http.MethodPost, "/api/companies", `{"name":"Acme","address":"Main St"}`)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, raw); got.Message != internalServerErrorMessage {
		t.Fatalf("internal details must not leak: %+v", got)
	}
}

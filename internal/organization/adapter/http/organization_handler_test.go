package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/usecase"
	"org-registry/internal/shared/errors"
	"org-registry/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOrganizationUC implements usecase.OrganizationUsecase with overridable
// function fields.
type MockOrganizationUC struct {
	CreateOrganizationFn    func(ctx context.Context, req usecase.CreateOrganizationRequest) (*model.Organization, error)
	GetOrganizationFn       func(ctx context.Context, id string) (*model.Organization, error)
	GetOrganizationBySlugFn func(ctx context.Context, slug string) (*model.Organization, error)
	UpdateOrganizationFn    func(ctx context.Context, req usecase.UpdateOrganizationRequest) (*model.Organization, error)
	DeleteOrganizationFn    func(ctx context.Context, id string) error
	ListOrganizationsFn     func(ctx context.Context, req usecase.ListOrganizationsRequest) ([]*model.Organization, error)
	CountOrganizationsFn    func(ctx context.Context) (int64, error)
	OrganizationExistsFn    func(ctx context.Context, id string) (bool, error)
}

func (m *MockOrganizationUC) CreateOrganization(ctx context.Context, req usecase.CreateOrganizationRequest) (*model.Organization, error) {
	return m.CreateOrganizationFn(ctx, req)
}

func (m *MockOrganizationUC) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	return m.GetOrganizationFn(ctx, id)
}

func (m *MockOrganizationUC) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	return m.GetOrganizationBySlugFn(ctx, slug)
}

func (m *MockOrganizationUC) UpdateOrganization(ctx context.Context, req usecase.UpdateOrganizationRequest) (*model.Organization, error) {
	return m.UpdateOrganizationFn(ctx, req)
}

func (m *MockOrganizationUC) DeleteOrganization(ctx context.Context, id string) error {
	return m.DeleteOrganizationFn(ctx, id)
}

func (m *MockOrganizationUC) ListOrganizations(ctx context.Context, req usecase.ListOrganizationsRequest) ([]*model.Organization, error) {
	return m.ListOrganizationsFn(ctx, req)
}

func (m *MockOrganizationUC) CountOrganizations(ctx context.Context) (int64, error) {
	return m.CountOrganizationsFn(ctx)
}

func (m *MockOrganizationUC) OrganizationExists(ctx context.Context, id string) (bool, error) {
	return m.OrganizationExistsFn(ctx, id)
}

func newTestApp(mockUC *MockOrganizationUC) *fiber.App {
	app := fiber.New()
	h := NewOrganizationHandler(mockUC, logger.NewLogger())
	h.RegisterRoutes(app)
	return app
}

func mustOrg(t *testing.T) *model.Organization {
	t.Helper()
	org, err := model.NewOrganization("acme", "Acme", model.OrganizationTypeEnterprise)
	require.NoError(t, err)
	return org
}

func TestCreateOrganizationHandler_Success(t *testing.T) {
	org := mustOrg(t)
	mockUC := &MockOrganizationUC{
		CreateOrganizationFn: func(ctx context.Context, req usecase.CreateOrganizationRequest) (*model.Organization, error) {
			assert.Equal(t, "acme", req.Slug)
			assert.Equal(t, "ENTERPRISE", req.Type)
			return org, nil
		},
	}
	app := newTestApp(mockUC)

	body := []byte(`{"slug":"acme","name":"Acme","organizationType":"ENTERPRISE"}`)
	req := httptest.NewRequest("POST", "/v1/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result OrganizationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "acme", result.Slug)
	assert.Equal(t, "Acme", result.DisplayName)
	assert.Equal(t, "ENTERPRISE", result.OrganizationType)
	assert.Equal(t, "organizations/"+org.ID.String(), result.Name)
}

func TestCreateOrganizationHandler_MissingSlug(t *testing.T) {
	app := newTestApp(&MockOrganizationUC{})

	body := []byte(`{"name":"Acme","organizationType":"PERSONAL"}`)
	req := httptest.NewRequest("POST", "/v1/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "missing_slug", result["error"])
}

func TestCreateOrganizationHandler_InvalidBody(t *testing.T) {
	app := newTestApp(&MockOrganizationUC{})

	req := httptest.NewRequest("POST", "/v1/organizations", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "invalid_request_body", result["error"])
}

func TestCreateOrganizationHandler_SlugConflict(t *testing.T) {
	mockUC := &MockOrganizationUC{
		CreateOrganizationFn: func(ctx context.Context, req usecase.CreateOrganizationRequest) (*model.Organization, error) {
			return nil, errors.NewConflictError("Organization with slug 'acme' already exists")
		},
	}
	app := newTestApp(mockUC)

	body := []byte(`{"slug":"acme","name":"Acme","organizationType":"PERSONAL"}`)
	req := httptest.NewRequest("POST", "/v1/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "organization_already_exists", result["error"])
}

func TestGetOrganizationHandler_NotFound(t *testing.T) {
	mockUC := &MockOrganizationUC{
		GetOrganizationFn: func(ctx context.Context, id string) (*model.Organization, error) {
			return nil, errors.NewNotFoundError("Organization '" + id + "'")
		},
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/organizations/e4b1c2aa-3f65-4f1e-8f57-000000000000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "organization_not_found", result["error"])
}

func TestGetOrganizationBySlugHandler_Success(t *testing.T) {
	org := mustOrg(t)
	mockUC := &MockOrganizationUC{
		GetOrganizationBySlugFn: func(ctx context.Context, slug string) (*model.Organization, error) {
			assert.Equal(t, "acme", slug)
			return org, nil
		},
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/organizations/slug/acme", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result OrganizationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "acme", result.Slug)
}

func TestListOrganizationsHandler_PassesQueryParams(t *testing.T) {
	var got usecase.ListOrganizationsRequest
	mockUC := &MockOrganizationUC{
		ListOrganizationsFn: func(ctx context.Context, req usecase.ListOrganizationsRequest) ([]*model.Organization, error) {
			got = req
			return []*model.Organization{}, nil
		},
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/organizations?type=PERSONAL&pageSize=25&offset=50", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PERSONAL", got.Type)
	assert.Equal(t, 25, got.PageSize)
	assert.Equal(t, 50, got.Offset)

	var result ListOrganizationsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Empty(t, result.Organizations)
}

func TestCountOrganizationsHandler(t *testing.T) {
	mockUC := &MockOrganizationUC{
		CountOrganizationsFn: func(ctx context.Context) (int64, error) { return 12, nil },
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/organizations/count", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(12), result["count"])
}

func TestUpdateOrganizationHandler_UsesPathID(t *testing.T) {
	org := mustOrg(t)
	var got usecase.UpdateOrganizationRequest
	mockUC := &MockOrganizationUC{
		UpdateOrganizationFn: func(ctx context.Context, req usecase.UpdateOrganizationRequest) (*model.Organization, error) {
			got = req
			return org, nil
		},
	}
	app := newTestApp(mockUC)

	body := []byte(`{"name":"Acme Holdings","removeLogo":true}`)
	req := httptest.NewRequest("PUT", "/v1/organizations/"+org.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, org.ID.String(), got.ID)
	assert.Equal(t, "Acme Holdings", got.Name)
	assert.True(t, got.RemoveLogo)
}

func TestDeleteOrganizationHandler_Success(t *testing.T) {
	mockUC := &MockOrganizationUC{
		DeleteOrganizationFn: func(ctx context.Context, id string) error { return nil },
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/organizations/e4b1c2aa-3f65-4f1e-8f57-000000000000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeleteOrganizationHandler_NotFound(t *testing.T) {
	mockUC := &MockOrganizationUC{
		DeleteOrganizationFn: func(ctx context.Context, id string) error {
			return errors.NewNotFoundError("Organization '" + id + "'")
		},
	}
	app := newTestApp(mockUC)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/organizations/e4b1c2aa-3f65-4f1e-8f57-000000000000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

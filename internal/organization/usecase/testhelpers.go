// Shared mocks for organization usecase tests.
package usecase

import (
	"context"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/domain/repository"
	"org-registry/internal/shared/logger"

	"github.com/google/uuid"
)

// MockOrganizationRepo implements repository.OrganizationRepository with
// overridable function fields. Unset fields behave as empty-store defaults.
type MockOrganizationRepo struct {
	CreateFn    func(ctx context.Context, org *model.Organization) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	GetBySlugFn func(ctx context.Context, slug string) (*model.Organization, error)
	UpdateFn    func(ctx context.Context, org *model.Organization) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
	ListFn      func(ctx context.Context, filter repository.ListFilter) ([]*model.Organization, error)
	CountFn     func(ctx context.Context) (int64, error)
	ExistsFn    func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *MockOrganizationRepo) Create(ctx context.Context, org *model.Organization) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, org)
	}
	return nil
}

func (m *MockOrganizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, model.ErrOrganizationNotFound
}

func (m *MockOrganizationRepo) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}
	return nil, model.ErrOrganizationNotFound
}

func (m *MockOrganizationRepo) Update(ctx context.Context, org *model.Organization) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, org)
	}
	return nil
}

func (m *MockOrganizationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *MockOrganizationRepo) List(ctx context.Context, filter repository.ListFilter) ([]*model.Organization, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, nil
}

func (m *MockOrganizationRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

func (m *MockOrganizationRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, id)
	}
	return false, nil
}

// MockLogger discards all output.
type MockLogger struct{}

func (m *MockLogger) Info(args ...interface{})                               {}
func (m *MockLogger) Error(args ...interface{})                              {}
func (m *MockLogger) Debug(args ...interface{})                              {}
func (m *MockLogger) Warn(args ...interface{})                               {}
func (m *MockLogger) Fatal(args ...interface{})                              {}
func (m *MockLogger) Debugf(format string, args ...interface{})              {}
func (m *MockLogger) Infof(format string, args ...interface{})               {}
func (m *MockLogger) Warnf(format string, args ...interface{})               {}
func (m *MockLogger) Errorf(format string, args ...interface{})              {}
func (m *MockLogger) Fatalf(format string, args ...interface{})              {}
func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger { return m }
func (m *MockLogger) WithContext(ctx context.Context) logger.Logger          { return m }
func (m *MockLogger) WithComponent(component string) logger.Logger           { return m }

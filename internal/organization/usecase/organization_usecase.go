package usecase

import (
	"context"
	stderrors "errors"
	"fmt"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/domain/repository"
	"org-registry/internal/shared/errors"
	"org-registry/internal/shared/logger"

	"github.com/google/uuid"
)

// isNotFound also recognizes the domain sentinel returned by repositories.
func isNotFound(err error) bool {
	return errors.IsNotFound(err) || stderrors.Is(err, model.ErrOrganizationNotFound)
}

func isConflict(err error) bool {
	return errors.IsConflict(err) || stderrors.Is(err, model.ErrSlugExists)
}

// Pagination defaults for List
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// OrganizationUsecase exposes the application operations over organizations.
type OrganizationUsecase interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*model.Organization, error)
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error)
	UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	ListOrganizations(ctx context.Context, req ListOrganizationsRequest) ([]*model.Organization, error)
	CountOrganizations(ctx context.Context) (int64, error)
	OrganizationExists(ctx context.Context, id string) (bool, error)
}

type organizationUsecase struct {
	repo   repository.OrganizationRepository
	logger logger.Logger
}

// NewOrganizationUsecase creates the organization usecase over the given repository.
func NewOrganizationUsecase(repo repository.OrganizationRepository, log logger.Logger) OrganizationUsecase {
	return &organizationUsecase{
		repo:   repo,
		logger: log.WithComponent("organization-usecase"),
	}
}

// CreateOrganization registers a new organization after checking slug uniqueness.
func (uc *organizationUsecase) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*model.Organization, error) {
	uc.logger.WithFields(map[string]interface{}{"slug": req.Slug, "name": req.Name}).Info("Creating organization")

	orgType, err := model.ParseOrganizationType(req.Type)
	if err != nil {
		return nil, errors.NewValidationError("organization type must be PERSONAL or ENTERPRISE")
	}

	org, err := model.NewOrganization(req.Slug, req.Name, orgType)
	if err != nil {
		if ve, ok := err.(*errors.ValidationErrors); ok {
			return nil, ve.ToAppError()
		}
		return nil, errors.NewValidationError(err.Error())
	}

	if req.Logo != "" {
		if err := org.UpdateLogo(req.Logo); err != nil {
			return nil, errors.NewValidationError("logo must be at most 500 characters")
		}
	}
	if req.ACLID != "" {
		aclID, err := uuid.Parse(req.ACLID)
		if err != nil {
			return nil, errors.NewValidationError("aclId must be a valid UUID")
		}
		if err := org.AssignACL(aclID); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	// Slug uniqueness is a business rule backed by infrastructure; the unique
	// index catches the race between check and insert.
	existing, err := uc.repo.GetBySlug(ctx, org.Slug)
	if err != nil && !isNotFound(err) {
		uc.logger.WithFields(map[string]interface{}{"error": err, "slug": org.Slug}).Error("Failed to check slug uniqueness")
		return nil, errors.NewInternalError("Failed to validate slug uniqueness").WithCause(err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("Organization with slug '%s' already exists", org.Slug))
	}

	if err := uc.repo.Create(ctx, org); err != nil {
		if isConflict(err) {
			return nil, errors.NewConflictError(fmt.Sprintf("Organization with slug '%s' already exists", org.Slug))
		}
		uc.logger.WithFields(map[string]interface{}{"error": err, "slug": org.Slug}).Error("Failed to create organization")
		return nil, errors.NewInternalError("Failed to create organization").WithCause(err)
	}

	uc.logger.WithFields(map[string]interface{}{"id": org.ID.String(), "slug": org.Slug}).Info("Organization created")
	return org, nil
}

// GetOrganization fetches an organization by ID.
func (uc *organizationUsecase) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("organization ID must be a valid UUID")
	}

	org, err := uc.repo.GetByID(ctx, orgID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("Organization '%s'", id))
		}
		uc.logger.WithFields(map[string]interface{}{"error": err, "id": id}).Error("Failed to get organization")
		return nil, errors.NewInternalError("Failed to get organization").WithCause(err)
	}
	return org, nil
}

// GetOrganizationBySlug fetches an organization by its slug.
func (uc *organizationUsecase) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	slug = model.NormalizeSlug(slug)
	if err := model.ValidateSlug(slug); err != nil {
		return nil, errors.NewValidationError("invalid slug format")
	}

	org, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("Organization '%s'", slug))
		}
		uc.logger.WithFields(map[string]interface{}{"error": err, "slug": slug}).Error("Failed to get organization by slug")
		return nil, errors.NewInternalError("Failed to get organization").WithCause(err)
	}
	return org, nil
}

// UpdateOrganization applies a partial update through the aggregate's methods.
func (uc *organizationUsecase) UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest) (*model.Organization, error) {
	org, err := uc.GetOrganization(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && req.Name != org.Name {
		if err := org.UpdateName(req.Name); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if req.Type != "" {
		orgType, err := model.ParseOrganizationType(req.Type)
		if err != nil {
			return nil, errors.NewValidationError("organization type must be PERSONAL or ENTERPRISE")
		}
		if err := org.ChangeType(orgType); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	switch {
	case req.RemoveLogo:
		if err := org.RemoveLogo(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	case req.Logo != "":
		if err := org.UpdateLogo(req.Logo); err != nil {
			return nil, errors.NewValidationError("logo must be at most 500 characters")
		}
	}

	switch {
	case req.RemoveACL:
		if err := org.RemoveACL(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	case req.ACLID != "":
		aclID, err := uuid.Parse(req.ACLID)
		if err != nil {
			return nil, errors.NewValidationError("aclId must be a valid UUID")
		}
		// Reassignment replaces the existing ACL.
		if org.HasACL() {
			if err := org.RemoveACL(); err != nil {
				return nil, errors.NewValidationError(err.Error())
			}
		}
		if err := org.AssignACL(aclID); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if ve := org.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	if err := uc.repo.Update(ctx, org); err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("Organization '%s'", req.ID))
		}
		uc.logger.WithFields(map[string]interface{}{"error": err, "id": req.ID}).Error("Failed to update organization")
		return nil, errors.NewInternalError("Failed to update organization").WithCause(err)
	}

	uc.logger.WithFields(map[string]interface{}{"id": org.ID.String(), "slug": org.Slug}).Info("Organization updated")
	return org, nil
}

// DeleteOrganization removes an organization by ID.
func (uc *organizationUsecase) DeleteOrganization(ctx context.Context, id string) error {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return errors.NewValidationError("organization ID must be a valid UUID")
	}

	if err := uc.repo.Delete(ctx, orgID); err != nil {
		if isNotFound(err) {
			return errors.NewNotFoundError(fmt.Sprintf("Organization '%s'", id))
		}
		uc.logger.WithFields(map[string]interface{}{"error": err, "id": id}).Error("Failed to delete organization")
		return errors.NewInternalError("Failed to delete organization").WithCause(err)
	}

	uc.logger.WithFields(map[string]interface{}{"id": id}).Info("Organization deleted")
	return nil
}

// ListOrganizations lists organizations, optionally filtered by type.
func (uc *organizationUsecase) ListOrganizations(ctx context.Context, req ListOrganizationsRequest) ([]*model.Organization, error) {
	filter := repository.ListFilter{
		PageSize: req.PageSize,
		Offset:   req.Offset,
	}
	if filter.PageSize <= 0 || filter.PageSize > maxPageSize {
		filter.PageSize = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if req.Type != "" {
		orgType, err := model.ParseOrganizationType(req.Type)
		if err != nil {
			return nil, errors.NewValidationError("organization type must be PERSONAL or ENTERPRISE")
		}
		filter.Type = orgType
	}

	orgs, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to list organizations")
		return nil, errors.NewInternalError("Failed to list organizations").WithCause(err)
	}
	return orgs, nil
}

// CountOrganizations returns the total number of organizations.
func (uc *organizationUsecase) CountOrganizations(ctx context.Context) (int64, error) {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to count organizations")
		return 0, errors.NewInternalError("Failed to count organizations").WithCause(err)
	}
	return count, nil
}

// OrganizationExists reports whether an organization with the given ID exists.
func (uc *organizationUsecase) OrganizationExists(ctx context.Context, id string) (bool, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return false, errors.NewValidationError("organization ID must be a valid UUID")
	}

	exists, err := uc.repo.Exists(ctx, orgID)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"error": err, "id": id}).Error("Failed to check organization existence")
		return false, errors.NewInternalError("Failed to check organization existence").WithCause(err)
	}
	return exists, nil
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/domain/repository"
	apperrors "org-registry/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsecase(repo repository.OrganizationRepository) OrganizationUsecase {
	return NewOrganizationUsecase(repo, &MockLogger{})
}

func mustOrg(t *testing.T, slug, name string, orgType model.OrganizationType) *model.Organization {
	t.Helper()
	org, err := model.NewOrganization(slug, name, orgType)
	require.NoError(t, err)
	return org
}

func TestCreateOrganization_Success(t *testing.T) {
	var created *model.Organization
	repo := &MockOrganizationRepo{
		CreateFn: func(ctx context.Context, org *model.Organization) error {
			created = org
			return nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug: "Acme-Corp",
		Name: "  Acme Corporation  ",
		Type: "enterprise",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "acme-corp", org.Slug)
	assert.Equal(t, "Acme Corporation", org.Name)
	assert.Equal(t, model.OrganizationTypeEnterprise, org.Type)
	assert.NotEqual(t, uuid.Nil, org.ID)
	assert.False(t, org.HasLogo())
	assert.False(t, org.HasACL())
}

func TestCreateOrganization_WithLogoAndACL(t *testing.T) {
	repo := &MockOrganizationRepo{}
	uc := newTestUsecase(repo)

	aclID := uuid.New()
	org, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug:  "acme",
		Name:  "Acme",
		Type:  "PERSONAL",
		Logo:  "https://cdn.example.com/acme.png",
		ACLID: aclID.String(),
	})
	require.NoError(t, err)
	assert.True(t, org.HasLogo())
	assert.True(t, org.LogoIsURL())
	require.NotNil(t, org.ACLID)
	assert.Equal(t, aclID, *org.ACLID)
}

func TestCreateOrganization_InvalidType(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug: "acme",
		Name: "Acme",
		Type: "GOVERNMENT",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateOrganization_CollectsAllValidationErrors(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug: "-bad-slug-",
		Name: "x",
		Type: "PERSONAL",
	})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	// Both the slug and the name problem must be reported together.
	violations, ok := appErr.Details["validation_errors"].([]apperrors.ValidationError)
	require.True(t, ok)
	require.Len(t, violations, 2)
	assert.Equal(t, "slug", violations[0].Field)
	assert.Equal(t, "name", violations[1].Field)
}

func TestCreateOrganization_SlugTaken(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	repo := &MockOrganizationRepo{
		GetBySlugFn: func(ctx context.Context, slug string) (*model.Organization, error) {
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug: "acme",
		Name: "Another Acme",
		Type: "PERSONAL",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateOrganization_InsertRaceMapsToConflict(t *testing.T) {
	repo := &MockOrganizationRepo{
		CreateFn: func(ctx context.Context, org *model.Organization) error {
			return model.ErrSlugExists
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Slug: "acme",
		Name: "Acme",
		Type: "PERSONAL",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestGetOrganization_Success(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypeEnterprise)
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			assert.Equal(t, existing.ID, id)
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.GetOrganization(context.Background(), existing.ID.String())
	require.NoError(t, err)
	assert.Equal(t, existing.Slug, org.Slug)
}

func TestGetOrganization_InvalidID(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.GetOrganization(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetOrganization_NotFound(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.GetOrganization(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetOrganizationBySlug_NormalizesInput(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	repo := &MockOrganizationRepo{
		GetBySlugFn: func(ctx context.Context, slug string) (*model.Organization, error) {
			assert.Equal(t, "acme", slug)
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.GetOrganizationBySlug(context.Background(), "  ACME  ")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Slug)
}

func TestGetOrganizationBySlug_InvalidSlug(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.GetOrganizationBySlug(context.Background(), "a--b")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateOrganization_Name(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	before := existing.UpdatedAt
	var updated *model.Organization
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
		UpdateFn: func(ctx context.Context, org *model.Organization) error {
			updated = org
			return nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:   existing.ID.String(),
		Name: "Acme Holdings",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Acme Holdings", org.Name)
	assert.True(t, org.UpdatedAt.After(before) || org.UpdatedAt.Equal(before))
	assert.True(t, !org.UpdatedAt.Before(org.CreatedAt))
}

func TestUpdateOrganization_SameNameIsNoOp(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:   existing.ID.String(),
		Name: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
}

func TestUpdateOrganization_ChangesType(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	var updated *model.Organization
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
		UpdateFn: func(ctx context.Context, org *model.Organization) error {
			updated = org
			return nil
		},
	}
	uc := newTestUsecase(repo)

	org, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:   existing.ID.String(),
		Type: "enterprise",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.OrganizationTypeEnterprise, org.Type)
	assert.True(t, !org.UpdatedAt.Before(org.CreatedAt))
}

func TestUpdateOrganization_InvalidType(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:   existing.ID.String(),
		Type: "GOVERNMENT",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateOrganization_RemoveLogoWithoutLogo(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypePersonal)
	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:         existing.ID.String(),
		RemoveLogo: true,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateOrganization_ReassignACL(t *testing.T) {
	existing := mustOrg(t, "acme", "Acme", model.OrganizationTypeEnterprise)
	first := uuid.New()
	require.NoError(t, existing.AssignACL(first))

	repo := &MockOrganizationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
			return existing, nil
		},
	}
	uc := newTestUsecase(repo)

	second := uuid.New()
	org, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:    existing.ID.String(),
		ACLID: second.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, org.ACLID)
	assert.Equal(t, second, *org.ACLID)
}

func TestUpdateOrganization_NotFound(t *testing.T) {
	uc := newTestUsecase(&MockOrganizationRepo{})

	_, err := uc.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		ID:   uuid.NewString(),
		Name: "Whatever",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteOrganization_Success(t *testing.T) {
	var deleted uuid.UUID
	repo := &MockOrganizationRepo{
		DeleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	uc := newTestUsecase(repo)

	id := uuid.New()
	require.NoError(t, uc.DeleteOrganization(context.Background(), id.String()))
	assert.Equal(t, id, deleted)
}

func TestDeleteOrganization_NotFound(t *testing.T) {
	repo := &MockOrganizationRepo{
		DeleteFn: func(ctx context.Context, id uuid.UUID) error {
			return model.ErrOrganizationNotFound
		},
	}
	uc := newTestUsecase(repo)

	err := uc.DeleteOrganization(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListOrganizations_ClampsPaging(t *testing.T) {
	var got repository.ListFilter
	repo := &MockOrganizationRepo{
		ListFn: func(ctx context.Context, filter repository.ListFilter) ([]*model.Organization, error) {
			got = filter
			return nil, nil
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.ListOrganizations(context.Background(), ListOrganizationsRequest{
		PageSize: 5000,
		Offset:   -3,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, got.PageSize)
	assert.Equal(t, 0, got.Offset)
}

func TestListOrganizations_TypeFilter(t *testing.T) {
	var got repository.ListFilter
	repo := &MockOrganizationRepo{
		ListFn: func(ctx context.Context, filter repository.ListFilter) ([]*model.Organization, error) {
			got = filter
			return []*model.Organization{}, nil
		},
	}
	uc := newTestUsecase(repo)

	_, err := uc.ListOrganizations(context.Background(), ListOrganizationsRequest{Type: "personal"})
	require.NoError(t, err)
	assert.Equal(t, model.OrganizationTypePersonal, got.Type)

	_, err = uc.ListOrganizations(context.Background(), ListOrganizationsRequest{Type: "banana"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCountOrganizations(t *testing.T) {
	repo := &MockOrganizationRepo{
		CountFn: func(ctx context.Context) (int64, error) { return 7, nil },
	}
	uc := newTestUsecase(repo)

	count, err := uc.CountOrganizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestOrganizationExists(t *testing.T) {
	repo := &MockOrganizationRepo{
		ExistsFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil },
	}
	uc := newTestUsecase(repo)

	exists, err := uc.OrganizationExists(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = uc.OrganizationExists(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

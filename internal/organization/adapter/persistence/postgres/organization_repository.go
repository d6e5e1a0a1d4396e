// Package postgres implements the organization repository over pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/domain/repository"
	"org-registry/internal/shared/database"
	"org-registry/internal/shared/eventbus"
	"org-registry/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

const organizationColumns = `id, slug, name, organization_type, logo, acl_id, created_at, updated_at`

// OrganizationRepository persists organizations in Postgres and publishes
// lifecycle events on the shared bus after every successful write.
type OrganizationRepository struct {
	db     database.DB
	bus    eventbus.EventBusInterface
	logger logger.Logger
}

// NewOrganizationRepository creates a Postgres-backed organization repository.
// The bus may be nil; events are then skipped.
func NewOrganizationRepository(db database.DB, bus eventbus.EventBusInterface, log logger.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		bus:    bus,
		logger: log.WithComponent("organization-repository"),
	}
}

var _ repository.OrganizationRepository = (*OrganizationRepository)(nil)

// Create inserts a new organization. A unique violation on the slug index is
// mapped to model.ErrSlugExists so callers can treat it as a conflict.
func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	const query = `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		org.ID, org.Slug, org.Name, string(org.Type), org.Logo, org.ACLID,
		org.CreatedAt, org.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugExists
		}
		return fmt.Errorf("failed to insert organization: %w", err)
	}

	r.publish(ctx, model.NewOrganizationEvent(model.EventOrganizationCreated, org))
	return nil
}

// GetByID fetches an organization by primary key.
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetBySlug fetches an organization by its unique slug.
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, slug))
}

// Update persists the mutable fields of an organization. The slug is part of
// the WHERE clause on purpose: it is immutable after creation.
func (r *OrganizationRepository) Update(ctx context.Context, org *model.Organization) error {
	// Fetch first so the update event carries the prior state.
	previous, err := r.GetByID(ctx, org.ID)
	if err != nil {
		return err
	}

	const query = `
		UPDATE organizations
		SET name = $2, organization_type = $3, logo = NULLIF($4, ''), acl_id = $5, updated_at = $6
		WHERE id = $1 AND slug = $7`

	tag, err := r.db.Exec(ctx, query,
		org.ID, org.Name, string(org.Type), org.Logo, org.ACLID, org.UpdatedAt, org.Slug)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrganizationNotFound
	}

	event := model.NewOrganizationEvent(model.EventOrganizationUpdated, org)
	event.OldData = previous
	r.publish(ctx, event)
	return nil
}

// Delete removes an organization by ID.
func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Fetch first so the deletion event carries the final state.
	org, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrganizationNotFound
	}

	r.publish(ctx, model.NewOrganizationEvent(model.EventOrganizationDeleted, org))
	return nil
}

// List returns organizations ordered by creation time, optionally filtered
// by type.
func (r *OrganizationRepository) List(ctx context.Context, filter repository.ListFilter) ([]*model.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations`
	args := []interface{}{}
	if filter.Type != "" {
		query += ` WHERE organization_type = $1`
		args = append(args, string(filter.Type))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*model.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organization rows: %w", err)
	}
	return orgs, nil
}

// Count returns the total number of organizations.
func (r *OrganizationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}
	return count, nil
}

// Exists reports whether an organization with the given ID exists.
func (r *OrganizationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check organization existence: %w", err)
	}
	return exists, nil
}

func (r *OrganizationRepository) scanOne(row pgx.Row) (*model.Organization, error) {
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

// scanOrganization maps a row onto the aggregate. logo is nullable in the
// schema and maps to the empty string.
func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var (
		org     model.Organization
		orgType string
		logo    *string
	)
	err := row.Scan(&org.ID, &org.Slug, &org.Name, &orgType, &logo, &org.ACLID,
		&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan organization row: %w", err)
	}
	org.Type = model.OrganizationType(orgType)
	if logo != nil {
		org.Logo = *logo
	}
	return &org, nil
}

func (r *OrganizationRepository) publish(ctx context.Context, event model.OrganizationEvent) {
	if r.bus == nil {
		return
	}
	r.bus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(event.Type, event, "organization-repository"))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

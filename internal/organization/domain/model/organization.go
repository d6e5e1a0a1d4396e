package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	apperrors "org-registry/internal/shared/errors"

	"github.com/google/uuid"
)

// Organization is the aggregate root of the registry.
// An organization is either PERSONAL (individual) or ENTERPRISE, is addressed
// by an immutable URL-friendly slug, and may carry a logo and a dedicated
// access control list.
type Organization struct {
	ID   uuid.UUID        `json:"id"`
	Slug string           `json:"slug"`
	Name string           `json:"name"`
	Type OrganizationType `json:"organizationType"`

	// Optional fields
	Logo  string     `json:"logo,omitempty"` // URL or storage path
	ACLID *uuid.UUID `json:"aclId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrganizationType represents the kind of organization
type OrganizationType string

const (
	OrganizationTypePersonal   OrganizationType = "PERSONAL"
	OrganizationTypeEnterprise OrganizationType = "ENTERPRISE"
)

// Field constraints
const (
	slugMinLength = 3
	slugMaxLength = 63
	nameMinLength = 2
	nameMaxLength = 100
	logoMaxLength = 500
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Common organization-related errors
var (
	ErrInvalidSlug          = errors.New("invalid slug")
	ErrInvalidName          = errors.New("invalid organization name")
	ErrInvalidType          = errors.New("invalid organization type")
	ErrInvalidLogo          = errors.New("invalid logo")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSlugExists           = errors.New("slug already in use")
	ErrNameUnchanged        = errors.New("name already set to this value")
	ErrNoLogo               = errors.New("organization has no logo to remove")
	ErrACLAlreadyAssigned   = errors.New("organization already has an ACL assigned")
	ErrNoACL                = errors.New("organization has no ACL to remove")
)

// ParseOrganizationType converts a raw string into an OrganizationType.
func ParseOrganizationType(raw string) (OrganizationType, error) {
	switch OrganizationType(strings.ToUpper(strings.TrimSpace(raw))) {
	case OrganizationTypePersonal:
		return OrganizationTypePersonal, nil
	case OrganizationTypeEnterprise:
		return OrganizationTypeEnterprise, nil
	default:
		return "", ErrInvalidType
	}
}

// NormalizeSlug trims and lowercases a raw slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug validates the registry slug format: lowercase letters, digits
// and single hyphens, no leading/trailing hyphen, 3-63 characters.
func ValidateSlug(slug string) error {
	slug = NormalizeSlug(slug)
	if len(slug) < slugMinLength || len(slug) > slugMaxLength {
		return ErrInvalidSlug
	}
	if strings.Contains(slug, "--") {
		return ErrInvalidSlug
	}
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// ValidateName validates the organization display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < nameMinLength || len(name) > nameMaxLength {
		return ErrInvalidName
	}
	return nil
}

// ValidateLogo validates a logo URL or path.
func ValidateLogo(logo string) error {
	logo = strings.TrimSpace(logo)
	if logo == "" || len(logo) > logoMaxLength {
		return ErrInvalidLogo
	}
	return nil
}

// NewOrganization creates a new organization with normalized fields.
// All field errors are collected so the caller sees every problem at once.
func NewOrganization(slug, name string, orgType OrganizationType) (*Organization, error) {
	now := time.Now()
	org := &Organization{
		ID:        uuid.New(),
		Slug:      NormalizeSlug(slug),
		Name:      strings.TrimSpace(name),
		Type:      orgType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if ve := org.Validate(); ve.HasErrors() {
		return nil, ve
	}
	return org, nil
}

// Validate checks every invariant of the aggregate and collects violations.
func (o *Organization) Validate() *apperrors.ValidationErrors {
	ve := apperrors.NewValidationErrors()

	if err := ValidateSlug(o.Slug); err != nil {
		ve.Add("slug", "slug must be 3-63 lowercase letters, digits and single hyphens, not starting or ending with a hyphen", o.Slug)
	}
	if err := ValidateName(o.Name); err != nil {
		ve.Add("name", "name must be 2-100 characters", o.Name)
	}
	if o.Type != OrganizationTypePersonal && o.Type != OrganizationTypeEnterprise {
		ve.Add("organizationType", "organization type must be PERSONAL or ENTERPRISE", string(o.Type))
	}
	if o.Logo != "" {
		if err := ValidateLogo(o.Logo); err != nil {
			ve.Add("logo", "logo must be at most 500 characters", o.Logo)
		}
	}
	if o.UpdatedAt.Before(o.CreatedAt) {
		ve.Add("updatedAt", "update time cannot precede creation time", o.UpdatedAt)
	}
	if o.CreatedAt.After(time.Now().Add(time.Minute)) {
		ve.Add("createdAt", "creation time cannot be in the future", o.CreatedAt)
	}
	return ve
}

// UpdateName replaces the display name and bumps the update time.
func (o *Organization) UpdateName(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	if o.Name == name {
		return ErrNameUnchanged
	}
	o.Name = name
	o.touch()
	return nil
}

// ChangeType switches the organization between PERSONAL and ENTERPRISE.
func (o *Organization) ChangeType(orgType OrganizationType) error {
	if orgType != OrganizationTypePersonal && orgType != OrganizationTypeEnterprise {
		return ErrInvalidType
	}
	if o.Type == orgType {
		return nil
	}
	o.Type = orgType
	o.touch()
	return nil
}

// UpdateLogo sets or replaces the logo.
func (o *Organization) UpdateLogo(logo string) error {
	logo = strings.TrimSpace(logo)
	if err := ValidateLogo(logo); err != nil {
		return err
	}
	o.Logo = logo
	o.touch()
	return nil
}

// RemoveLogo clears the logo.
func (o *Organization) RemoveLogo() error {
	if o.Logo == "" {
		return ErrNoLogo
	}
	o.Logo = ""
	o.touch()
	return nil
}

// AssignACL attaches a dedicated ACL. An organization holds at most one.
func (o *Organization) AssignACL(aclID uuid.UUID) error {
	if o.ACLID != nil {
		return ErrACLAlreadyAssigned
	}
	o.ACLID = &aclID
	o.touch()
	return nil
}

// RemoveACL detaches the ACL.
func (o *Organization) RemoveACL() error {
	if o.ACLID == nil {
		return ErrNoACL
	}
	o.ACLID = nil
	o.touch()
	return nil
}

// IsPersonal returns true for individual organizations
func (o *Organization) IsPersonal() bool {
	return o.Type == OrganizationTypePersonal
}

// IsEnterprise returns true for enterprise organizations
func (o *Organization) IsEnterprise() bool {
	return o.Type == OrganizationTypeEnterprise
}

// HasLogo reports whether a logo is set
func (o *Organization) HasLogo() bool {
	return o.Logo != ""
}

// HasACL reports whether an ACL is attached
func (o *Organization) HasACL() bool {
	return o.ACLID != nil
}

// LogoIsURL reports whether the logo is an http(s) URL rather than a path
func (o *Organization) LogoIsURL() bool {
	return strings.HasPrefix(o.Logo, "http://") || strings.HasPrefix(o.Logo, "https://")
}

// GetResourceName returns the full resource name for this organization
func (o *Organization) GetResourceName() string {
	return "organizations/" + o.ID.String()
}

func (o *Organization) touch() {
	o.UpdatedAt = time.Now()
}

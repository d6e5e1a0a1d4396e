package usecase

// CreateOrganizationRequest carries the fields needed to register an organization.
type CreateOrganizationRequest struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Type  string `json:"organizationType"`
	Logo  string `json:"logo,omitempty"`
	ACLID string `json:"aclId,omitempty"`
}

// UpdateOrganizationRequest carries a partial update. Empty fields are left
// untouched; the slug is immutable and cannot appear here.
type UpdateOrganizationRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Type       string `json:"organizationType,omitempty"`
	Logo       string `json:"logo,omitempty"`
	RemoveLogo bool   `json:"removeLogo,omitempty"`
	ACLID      string `json:"aclId,omitempty"`
	RemoveACL  bool   `json:"removeAcl,omitempty"`
}

// ListOrganizationsRequest narrows and pages List results.
type ListOrganizationsRequest struct {
	Type     string `json:"organizationType,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

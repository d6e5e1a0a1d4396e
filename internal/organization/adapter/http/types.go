package http

import (
	"time"

	"org-registry/internal/organization/domain/model"
)

// OrganizationResponse is the wire representation of an organization.
type OrganizationResponse struct {
	Name             string `json:"name"`
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	DisplayName      string `json:"displayName"`
	OrganizationType string `json:"organizationType"`
	Logo             string `json:"logo,omitempty"`
	ACLID            string `json:"aclId,omitempty"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// ListOrganizationsResponse wraps a page of organizations.
type ListOrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

func toOrganizationResponse(org *model.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		Name:             org.GetResourceName(),
		ID:               org.ID.String(),
		Slug:             org.Slug,
		DisplayName:      org.Name,
		OrganizationType: string(org.Type),
		Logo:             org.Logo,
		CreatedAt:        org.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        org.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if org.ACLID != nil {
		resp.ACLID = org.ACLID.String()
	}
	return resp
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types published on the shared event bus after every
// successful repository write.
const (
	EventOrganizationCreated = "organization.created"
	EventOrganizationUpdated = "organization.updated"
	EventOrganizationDeleted = "organization.deleted"
)

// OrganizationEvent is the payload carried by lifecycle events.
// OldData is only set on updates.
type OrganizationEvent struct {
	Type           string        `json:"type"`
	OrganizationID uuid.UUID     `json:"organizationId"`
	Slug           string        `json:"slug"`
	Data           *Organization `json:"data,omitempty"`
	OldData        *Organization `json:"oldData,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// NewOrganizationEvent builds a lifecycle event for the given organization.
func NewOrganizationEvent(eventType string, org *Organization) OrganizationEvent {
	return OrganizationEvent{
		Type:           eventType,
		OrganizationID: org.ID,
		Slug:           org.Slug,
		Data:           org,
		Timestamp:      time.Now(),
	}
}

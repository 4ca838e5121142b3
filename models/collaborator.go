package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CollaboratorRole is the closed set of roles a collaborator can hold
type CollaboratorRole string

const (
	RoleViewer      CollaboratorRole = "viewer"
	RoleContributor CollaboratorRole = "contributor"
	RoleEditor      CollaboratorRole = "editor"
	RoleAdmin       CollaboratorRole = "admin"
)

// Valid reports whether the role is one of the known variants
func (r CollaboratorRole) Valid() bool {
	switch r {
	case RoleViewer, RoleContributor, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Collaborator permissions
const (
	PermissionView    = "view"
	PermissionComment = "comment"
	PermissionUpload  = "upload"
	PermissionEdit    = "edit"
	PermissionManage  = "manage"
)

// PermissionsForRole maps a role to its fixed permission set. Roles
// are strictly additive from viewer up to admin.
func PermissionsForRole(role CollaboratorRole) PermissionList {
	switch role {
	case RoleViewer:
		return PermissionList{PermissionView}
	case RoleContributor:
		return PermissionList{PermissionView, PermissionComment, PermissionUpload}
	case RoleEditor:
		return PermissionList{PermissionView, PermissionComment, PermissionUpload, PermissionEdit}
	case RoleAdmin:
		return PermissionList{PermissionView, PermissionComment, PermissionUpload, PermissionEdit, PermissionManage}
	}
	return nil
}

// InvitationStatus tracks the lifecycle of a collaboration invite
type InvitationStatus string

const (
	InviteStatusPending  InvitationStatus = "pending"
	InviteStatusAccepted InvitationStatus = "accepted"
	InviteStatusDeclined InvitationStatus = "declined"
)

// PermissionList is the JSONB-persisted permission set
type PermissionList []string

// Value implements driver.Valuer for JSONB
func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = nil
		return nil
	}

	if len(bytes) == 0 {
		*p = nil
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Contains reports whether the permission is in the list
func (p PermissionList) Contains(permission string) bool {
	for _, perm := range p {
		if perm == permission {
			return true
		}
	}
	return false
}

// Collaborator associates an invited email/user with a dispute
type Collaborator struct {
	ID          uuid.UUID        `json:"id"`
	DisputeID   uuid.UUID        `json:"dispute_id"`
	UserID      *uuid.UUID       `json:"user_id,omitempty"`
	Email       string           `json:"email"`
	Role        CollaboratorRole `json:"role"`
	Permissions PermissionList   `json:"permissions"`
	Status      InvitationStatus `json:"status"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	InvitedAt   time.Time        `json:"invited_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
}

// Metadata is a free-form JSONB blob on activity entries
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = nil
		return nil
	}

	if len(bytes) == 0 {
		*m = nil
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// CollaboratorActivity is an audit entry for collaboration events on
// a dispute
type CollaboratorActivity struct {
	ID           uuid.UUID `json:"id"`
	DisputeID    uuid.UUID `json:"dispute_id"`
	UserID       uuid.UUID `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

package group

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle of an invited participant.
type InvitationStatus string

const (
	// InvitationPending means the invited email has not signed up yet.
	InvitationPending InvitationStatus = "pending"

	// InvitationRegistered means the invited email signed up and the
	// invitation was converted into a membership. The invited identifier
	// stays on historical expense rows.
	InvitationRegistered InvitationStatus = "registered"
)

// Group represents a named collection of participants. The creator is always
// implicitly privileged: only the creator can delete the group.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Member relates a registered user to a group. The admin flag grants
// membership-management rights, a weaker privilege than being the creator.
type Member struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	UserID    uuid.UUID `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via JOIN with users.
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Invitation is the placeholder identity for someone without an account yet.
// Its ID participates in expenses and splits like a registered user ID.
type Invitation struct {
	ID        uuid.UUID        `json:"id"`
	GroupID   uuid.UUID        `json:"group_id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	InvitedBy uuid.UUID        `json:"invited_by"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

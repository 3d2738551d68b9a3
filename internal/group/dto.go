package group

// CreateGroupRequest represents the request to create a new group.
// Members lists emails to add: existing accounts become members, unknown
// emails become invited participants.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

// AddParticipantRequest adds one person to a group by email.
// Name is optional and only used when the email has no account yet.
type AddParticipantRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SetAdminRequest toggles the admin flag on a membership.
type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// MemberResult reports what happened to one email during member resolution.
type MemberResult struct {
	Email  string `json:"email"`
	Status string `json:"status"` // added, invited, already_member, already_invited, error
}

// GroupResponse represents the response for a group.
type GroupResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatedBy string                `json:"created_by"`
	CreatedAt string                `json:"created_at"`
	Members   []*MemberResponse     `json:"members,omitempty"`
	Invited   []*InvitationResponse `json:"invited,omitempty"`
}

// CreateGroupResponse includes the per-email resolution results.
type CreateGroupResponse struct {
	Group         *GroupResponse  `json:"group"`
	MemberResults []*MemberResult `json:"member_results,omitempty"`
}

// MemberResponse represents a registered member in a group response.
type MemberResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	JoinedAt string `json:"joined_at"`
}

// InvitationResponse represents an invited participant in a group response.
type InvitationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	InvitedAt string `json:"invited_at"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// ToResponse converts a Group model to a GroupResponse DTO.
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatedBy: g.CreatedBy.String(),
		CreatedAt: g.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO.
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID.String(),
		UserID:   m.UserID.String(),
		Name:     m.Name,
		Email:    m.Email,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToResponse converts an Invitation model to an InvitationResponse DTO.
func (i *Invitation) ToResponse() *InvitationResponse {
	return &InvitationResponse{
		ID:        i.ID.String(),
		Name:      i.Name,
		Email:     i.Email,
		Status:    string(i.Status),
		InvitedAt: i.CreatedAt.UTC().Format(timeLayout),
	}
}

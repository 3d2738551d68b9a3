package group

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// Repository handles group, membership, and invitation persistence.
type Repository interface {
	CreateWithCreator(ctx context.Context, name string, creatorID uuid.UUID) (*Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Group, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Members(ctx context.Context, groupID uuid.UUID) ([]*Member, error)
	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*Member, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (*Member, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	SetMemberAdmin(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (bool, error)

	Invitations(ctx context.Context, groupID uuid.UUID) ([]*Invitation, error)
	GetInvitationByEmail(ctx context.Context, groupID uuid.UUID, email string) (*Invitation, error)
	CreateInvitation(ctx context.Context, inv *Invitation) error
}

// UserLookup resolves emails against the registered-user directory.
type UserLookup interface {
	LookupByEmail(ctx context.Context, email string) (uuid.UUID, string, bool, error)
}

// Service handles group business logic.
type Service struct {
	repo  Repository
	users UserLookup
}

// NewService creates a new group service.
func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

// Create creates a group with the creator as admin member, then resolves the
// requested member emails: existing accounts become members, unknown emails
// become invited participants. Email resolution is best-effort per entry.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateGroupRequest) (*Group, []*MemberResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, apperr.Validation("group name is required")
	}

	g, err := s.repo.CreateWithCreator(ctx, name, creatorID)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("group created", "group_id", g.ID, "created_by", creatorID)

	var results []*MemberResult
	for _, raw := range req.Members {
		email := strings.TrimSpace(strings.ToLower(raw))
		if email == "" {
			continue
		}
		results = append(results, s.resolveParticipant(ctx, g.ID, creatorID, email, ""))
	}

	return g, results, nil
}

// resolveParticipant turns one email into a membership or an invitation.
func (s *Service) resolveParticipant(ctx context.Context, groupID, inviterID uuid.UUID, email, displayName string) *MemberResult {
	result := &MemberResult{Email: email}

	userID, _, found, err := s.users.LookupByEmail(ctx, email)
	if err != nil {
		result.Status = "error"
		return result
	}

	if found {
		existing, err := s.repo.GetMember(ctx, groupID, userID)
		if err != nil {
			result.Status = "error"
			return result
		}
		if existing != nil {
			result.Status = "already_member"
			return result
		}
		if _, err := s.repo.AddMember(ctx, groupID, userID, false); err != nil {
			result.Status = "error"
			return result
		}
		result.Status = "added"
		return result
	}

	existing, err := s.repo.GetInvitationByEmail(ctx, groupID, email)
	if err != nil {
		result.Status = "error"
		return result
	}
	if existing != nil {
		result.Status = "already_invited"
		return result
	}

	if displayName == "" {
		displayName = nameFromEmail(email)
	}
	inv := &Invitation{
		GroupID:   groupID,
		Name:      displayName,
		Email:     email,
		InvitedBy: inviterID,
		Status:    InvitationPending,
	}
	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		result.Status = "error"
		return result
	}
	result.Status = "invited"
	return result
}

// Get retrieves a group with its registered members and invited participants.
// The caller must belong to the group.
func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*Group, []*Member, []*Invitation, error) {
	g, err := s.requireGroup(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := s.requireMember(ctx, g, callerID); err != nil {
		return nil, nil, nil, err
	}

	members, err := s.repo.Members(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	invitations, err := s.repo.Invitations(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, members, invitations, nil
}

// ListByUser retrieves the groups a user belongs to.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage
	return s.repo.ListByUser(ctx, userID, perPage, offset)
}

// Delete removes a group. Only the creator may delete; deletion cascades to
// memberships, invitations, expenses, and splits.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	g, err := s.requireGroup(ctx, id)
	if err != nil {
		return err
	}
	if g.CreatedBy != callerID {
		return apperr.Authorization("only the group creator can delete the group")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", id, "deleted_by", callerID)
	return nil
}

// AddParticipant adds one email to the group as a member or an invited
// participant. Requires admin rights.
func (s *Service) AddParticipant(ctx context.Context, callerID, groupID uuid.UUID, req *AddParticipantRequest) (*MemberResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}

	g, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, g, callerID); err != nil {
		return nil, err
	}

	return s.resolveParticipant(ctx, groupID, callerID, email, strings.TrimSpace(req.Name)), nil
}

// RemoveMember removes a registered member from the group. Admins and the
// creator can remove anyone but the creator; members can remove themselves.
func (s *Service) RemoveMember(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	g, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if userID == g.CreatedBy {
		return apperr.Authorization("the group creator cannot be removed")
	}
	if callerID != userID {
		if err := s.requireAdmin(ctx, g, callerID); err != nil {
			return err
		}
	}

	removed, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("member not found")
	}
	return nil
}

// SetAdmin toggles a member's admin flag. Only the creator may do this.
func (s *Service) SetAdmin(ctx context.Context, callerID, groupID, userID uuid.UUID, isAdmin bool) error {
	g, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.CreatedBy != callerID {
		return apperr.Authorization("only the group creator can change admin rights")
	}

	updated, err := s.repo.SetMemberAdmin(ctx, groupID, userID, isAdmin)
	if err != nil {
		return err
	}
	if !updated {
		return apperr.NotFound("member not found")
	}
	return nil
}

// Invitations lists the group's invited participants. Caller must belong to
// the group.
func (s *Service) Invitations(ctx context.Context, callerID, groupID uuid.UUID) ([]*Invitation, error) {
	g, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, g, callerID); err != nil {
		return nil, err
	}
	return s.repo.Invitations(ctx, groupID)
}

// nameFromEmail derives a display name for an invited participant who was
// referenced by email only.
func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func (s *Service) requireGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperr.NotFound("group not found")
	}
	return g, nil
}

func (s *Service) requireMember(ctx context.Context, g *Group, userID uuid.UUID) error {
	if g.CreatedBy == userID {
		return nil
	}
	member, err := s.repo.GetMember(ctx, g.ID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.Authorization("not a member of this group")
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, g *Group, userID uuid.UUID) error {
	if g.CreatedBy == userID {
		return nil
	}
	member, err := s.repo.GetMember(ctx, g.ID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.Authorization("not a member of this group")
	}
	if !member.IsAdmin {
		return apperr.Authorization("admin rights required")
	}
	return nil
}

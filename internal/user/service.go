package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// Repository handles user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

// GroupDirectory is the slice of group storage the user service needs to
// promote pending invitations into memberships at registration time.
type GroupDirectory interface {
	PendingInviteGroupIDs(ctx context.Context, email string) ([]uuid.UUID, error)
	AddMemberByPromotion(ctx context.Context, groupID, userID uuid.UUID) error
	MarkInvitationsRegistered(ctx context.Context, email string) error
}

// Service handles user business logic.
type Service struct {
	repo   Repository
	groups GroupDirectory
}

// NewService creates a new user service.
func NewService(repo Repository, groups GroupDirectory) *Service {
	return &Service{repo: repo, groups: groups}
}

// Register creates the user row for a freshly signed-up identity and
// promotes any pending invitations for that email into memberships. The
// invited-participant IDs on historical expense rows are left untouched;
// only the invitation status changes.
func (s *Service) Register(ctx context.Context, req *RegisterUserRequest) (*User, []uuid.UUID, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, nil, apperr.Validation("invalid user id")
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" || email == "" {
		return nil, nil, apperr.Validation("name and email are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, apperr.Validation("email already in use")
	}

	u := &User{ID: id, Name: name, Email: email}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	groupIDs, err := s.groups.PendingInviteGroupIDs(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	for _, groupID := range groupIDs {
		if err := s.groups.AddMemberByPromotion(ctx, groupID, id); err != nil {
			return nil, nil, err
		}
	}
	if len(groupIDs) > 0 {
		if err := s.groups.MarkInvitationsRegistered(ctx, email); err != nil {
			return nil, nil, err
		}
		slog.Info("promoted invitations to memberships",
			"user_id", id, "email", email, "groups", len(groupIDs))
	}

	return u, groupIDs, nil
}

// GetByID retrieves a user by their ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// GetByEmail retrieves a user by their email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// List retrieves users with pagination.
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

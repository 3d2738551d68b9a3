package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/whopaid/whopaid/internal/expense/split"
	"github.com/whopaid/whopaid/pkg/apperr"
)

// Repository handles expense and split persistence.
type Repository interface {
	CreateExpenseWithSplits(ctx context.Context, e *Expense, splits []*Split) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	SplitsByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Split, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error)
	GroupTotalSpent(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)

	MemberExists(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	InvitedParticipantExists(ctx context.Context, groupID, invitedID uuid.UUID) (bool, error)
}

// Service handles expense business logic.
type Service struct {
	repo Repository
}

// NewService creates a new expense service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// resolvedParticipant is a participant reference after request validation.
type resolvedParticipant struct {
	id      uuid.UUID
	invited bool
	email   *string
}

// RecordExpense validates the request, computes an even split, and stores the
// expense together with its splits in a single transaction. Validation
// happens before any write, so a rejected request leaves no partial state.
func (s *Service) RecordExpense(ctx context.Context, callerID uuid.UUID, req *RecordExpenseRequest) (*ExpenseWithSplits, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		return nil, apperr.Validation("invalid group id")
	}

	payer, err := resolveParticipant(&req.PaidBy)
	if err != nil {
		return nil, err
	}

	if len(req.Participants) == 0 {
		return nil, apperr.Validation("at least one participant is required")
	}
	participants := make([]resolvedParticipant, 0, len(req.Participants))
	seen := make(map[uuid.UUID]bool, len(req.Participants))
	for i := range req.Participants {
		p, err := resolveParticipant(&req.Participants[i])
		if err != nil {
			return nil, err
		}
		if seen[p.id] {
			return nil, apperr.Validation("duplicate participant")
		}
		seen[p.id] = true
		participants = append(participants, p)
	}

	ids := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		ids[i] = p.id
	}
	shares, err := split.Even(req.Amount, ids)
	if err != nil {
		switch {
		case errors.Is(err, split.ErrNonPositiveAmount):
			return nil, apperr.Validation("amount must be a positive number")
		case errors.Is(err, split.ErrSubCentAmount):
			return nil, apperr.Validation("amount cannot have more than two decimal places")
		default:
			return nil, apperr.Validation("%s", err)
		}
	}

	member, err := s.repo.MemberExists(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Authorization("not a member of this group")
	}

	if payer.invited {
		exists, err := s.repo.InvitedParticipantExists(ctx, groupID, payer.id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("invited participant not found in this group")
		}
	} else {
		exists, err := s.repo.MemberExists(ctx, groupID, payer.id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("payer is not a member of this group")
		}
	}

	e := &Expense{
		GroupID:       groupID,
		Title:         title,
		Amount:        req.Amount,
		PaidBy:        payer.id,
		PaidByInvited: payer.invited,
		Note:          req.Note,
	}

	splits := make([]*Split, len(shares))
	for i, share := range shares {
		p := participants[i]
		sp := &Split{
			ParticipantID: p.id,
			Amount:        share.Amount,
			Invited:       p.invited,
		}
		if p.invited {
			if p.email != nil && *p.email != "" {
				sp.InvitedEmail = p.email
			} else {
				placeholder := PlaceholderEmail(p.id)
				sp.InvitedEmail = &placeholder
			}
		}
		splits[i] = sp
	}

	if err := s.repo.CreateExpenseWithSplits(ctx, e, splits); err != nil {
		return nil, err
	}

	slog.Info("expense recorded",
		"expense_id", e.ID,
		"group_id", groupID,
		"amount", req.Amount.StringFixed(2),
		"participants", len(splits),
	)
	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// GetByID retrieves an expense with its splits. The caller must belong to the
// owning group.
func (s *Service) GetByID(ctx context.Context, callerID, id uuid.UUID) (*ExpenseWithSplits, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFound("expense not found")
	}
	member, err := s.repo.MemberExists(ctx, e.GroupID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Authorization("not a member of this group")
	}
	splits, err := s.repo.SplitsByExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// ListByGroup retrieves a page of the group's expenses, newest first, along
// with the total count and the group's total spend.
func (s *Service) ListByGroup(ctx context.Context, callerID, groupID uuid.UUID, page, perPage int) ([]*Expense, int, decimal.Decimal, error) {
	member, err := s.repo.MemberExists(ctx, groupID, callerID)
	if err != nil {
		return nil, 0, decimal.Zero, err
	}
	if !member {
		return nil, 0, decimal.Zero, apperr.Authorization("not a member of this group")
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	expenses, total, err := s.repo.ListByGroup(ctx, groupID, perPage, offset)
	if err != nil {
		return nil, 0, decimal.Zero, err
	}
	totalSpent, err := s.repo.GroupTotalSpent(ctx, groupID)
	if err != nil {
		return nil, 0, decimal.Zero, err
	}
	return expenses, total, totalSpent, nil
}

// PlaceholderEmail synthesizes a stable email for an invited participant who
// was referenced without one. The .invalid TLD can never be delivered to.
func PlaceholderEmail(invitedID uuid.UUID) string {
	return fmt.Sprintf("invited-%s@whopaid.invalid", invitedID)
}

func resolveParticipant(in *ParticipantInput) (resolvedParticipant, error) {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return resolvedParticipant{}, apperr.Validation("invalid participant id")
	}
	switch ParticipantKind(in.Kind) {
	case KindRegistered:
		return resolvedParticipant{id: id}, nil
	case KindInvited:
		return resolvedParticipant{id: id, invited: true, email: in.Email}, nil
	default:
		return resolvedParticipant{}, apperr.Validation("participant kind must be registered or invited")
	}
}

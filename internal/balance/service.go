package balance

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// Repository loads the data the resolver works on.
type Repository interface {
	Participants(ctx context.Context, groupID uuid.UUID) ([]Participant, error)
	Ledger(ctx context.Context, groupID uuid.UUID) ([]LedgerExpense, error)
	RPCBalances(ctx context.Context, groupID uuid.UUID) ([]NetBalance, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Service handles balance and settlement queries.
type Service struct {
	repo Repository
}

// NewService creates a new balance service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NetBalances returns every group participant's net balance. The aggregated
// database function is tried first; when it is unavailable the balances are
// recomputed from the raw ledger, which yields identical results.
func (s *Service) NetBalances(ctx context.Context, callerID, groupID uuid.UUID) ([]NetBalance, error) {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	nets, err := s.repo.RPCBalances(ctx, groupID)
	if err == nil {
		sortNetBalances(nets)
		return nets, nil
	}
	if !apperr.IsKind(err, apperr.KindAggregationUnavailable) {
		return nil, err
	}
	slog.Warn("balance aggregation unavailable, recomputing from ledger", "group_id", groupID)

	return s.netFromLedger(ctx, groupID)
}

// Settlements resolves who the participant owes or is owed by. Settlements
// are always computed from the raw ledger, never from aggregated balances.
func (s *Service) Settlements(ctx context.Context, callerID, groupID, participantID uuid.UUID) ([]Settlement, error) {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	participants, err := s.repo.Participants(ctx, groupID)
	if err != nil {
		return nil, err
	}
	known := false
	for _, p := range participants {
		if p.ID == participantID {
			known = true
			break
		}
	}
	if !known {
		return nil, apperr.NotFound("participant not found in this group")
	}

	expenses, err := s.repo.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return Settlements(participants, expenses, participantID), nil
}

func (s *Service) netFromLedger(ctx context.Context, groupID uuid.UUID) ([]NetBalance, error) {
	participants, err := s.repo.Participants(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return NetBalances(participants, expenses), nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.Authorization("not a member of this group")
	}
	return nil
}

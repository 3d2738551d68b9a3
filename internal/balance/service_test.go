package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whopaid/whopaid/pkg/apperr"
)

type fakeRepo struct {
	participants []Participant
	ledger       []LedgerExpense
	members      map[uuid.UUID]bool

	rpcResult []NetBalance
	rpcErr    error
	rpcCalls  int
}

func (f *fakeRepo) Participants(context.Context, uuid.UUID) ([]Participant, error) {
	return f.participants, nil
}

func (f *fakeRepo) Ledger(context.Context, uuid.UUID) ([]LedgerExpense, error) {
	return f.ledger, nil
}

func (f *fakeRepo) RPCBalances(context.Context, uuid.UUID) ([]NetBalance, error) {
	f.rpcCalls++
	return f.rpcResult, f.rpcErr
}

func (f *fakeRepo) IsMember(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return f.members[userID], nil
}

func threeParticipantLedger() ([]Participant, []LedgerExpense, [3]uuid.UUID) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "90", "30", a, b, c),
	}
	return participants, expenses, [3]uuid.UUID{a, b, c}
}

func TestNetBalancesUsesRPCFastPath(t *testing.T) {
	participants, expenses, ids := threeParticipantLedger()
	caller := ids[0]

	repo := &fakeRepo{
		participants: participants,
		ledger:       expenses,
		members:      map[uuid.UUID]bool{caller: true},
		rpcResult: []NetBalance{
			{ParticipantID: ids[0], Name: "Alice", Balance: money("60")},
			{ParticipantID: ids[1], Name: "Bob", Balance: money("-30")},
			{ParticipantID: ids[2], Name: "Carol", Balance: money("-30")},
		},
	}
	svc := NewService(repo)

	nets, err := svc.NetBalances(context.Background(), caller, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.rpcCalls)
	require.Len(t, nets, 3)
	assert.True(t, nets[0].Balance.Equal(money("60")))
}

func TestNetBalancesRPCPathSortedLikeLedgerPath(t *testing.T) {
	participants, expenses, ids := threeParticipantLedger()
	caller := ids[0]

	// RPC rows arrive in arbitrary order.
	repo := &fakeRepo{
		participants: participants,
		ledger:       expenses,
		members:      map[uuid.UUID]bool{caller: true},
		rpcResult: []NetBalance{
			{ParticipantID: ids[2], Name: "Carol", Balance: money("-30")},
			{ParticipantID: ids[0], Name: "Alice", Balance: money("60")},
			{ParticipantID: ids[1], Name: "Bob", Balance: money("-30")},
		},
	}
	svc := NewService(repo)

	fast, err := svc.NetBalances(context.Background(), caller, uuid.New())
	require.NoError(t, err)

	fallback := NetBalances(participants, expenses)
	require.Equal(t, len(fallback), len(fast))
	for i := range fast {
		assert.Equal(t, fallback[i].ParticipantID, fast[i].ParticipantID)
		assert.Equal(t, fallback[i].Name, fast[i].Name)
		assert.True(t, fast[i].Balance.Equal(fallback[i].Balance))
	}
}

func TestNetBalancesFallsBackToLedger(t *testing.T) {
	participants, expenses, ids := threeParticipantLedger()
	caller := ids[0]

	repo := &fakeRepo{
		participants: participants,
		ledger:       expenses,
		members:      map[uuid.UUID]bool{caller: true},
		rpcErr:       apperr.AggregationUnavailable(errors.New("function get_balances(uuid) does not exist")),
	}
	svc := NewService(repo)

	nets, err := svc.NetBalances(context.Background(), caller, uuid.New())
	require.NoError(t, err)
	require.Len(t, nets, 3)

	assert.True(t, balanceOf(t, nets, ids[0]).Equal(money("60")))
	assert.True(t, balanceOf(t, nets, ids[1]).Equal(money("-30")))
	assert.True(t, balanceOf(t, nets, ids[2]).Equal(money("-30")))
}

func TestNetBalancesPropagatesOtherErrors(t *testing.T) {
	caller := uuid.New()
	repo := &fakeRepo{
		members: map[uuid.UUID]bool{caller: true},
		rpcErr:  apperr.Persistence(errors.New("connection refused"), "failed to call get_balances"),
	}
	svc := NewService(repo)

	_, err := svc.NetBalances(context.Background(), caller, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence), "got %v", err)
}

func TestNetBalancesRequiresMembership(t *testing.T) {
	repo := &fakeRepo{members: map[uuid.UUID]bool{}}
	svc := NewService(repo)

	_, err := svc.NetBalances(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization), "got %v", err)
	assert.Equal(t, 0, repo.rpcCalls)
}

func TestSettlementsNeverUseRPC(t *testing.T) {
	participants, expenses, ids := threeParticipantLedger()
	caller := ids[0]

	repo := &fakeRepo{
		participants: participants,
		ledger:       expenses,
		members:      map[uuid.UUID]bool{caller: true},
	}
	svc := NewService(repo)

	settlements, err := svc.Settlements(context.Background(), caller, uuid.New(), ids[2])
	require.NoError(t, err)
	assert.Equal(t, 0, repo.rpcCalls)

	require.Len(t, settlements, 1)
	assert.Equal(t, ids[0], settlements[0].CounterpartyID)
	assert.True(t, settlements[0].Amount.Equal(money("30")))
}

func TestSettlementsUnknownParticipant(t *testing.T) {
	participants, expenses, ids := threeParticipantLedger()
	caller := ids[0]

	repo := &fakeRepo{
		participants: participants,
		ledger:       expenses,
		members:      map[uuid.UUID]bool{caller: true},
	}
	svc := NewService(repo)

	_, err := svc.Settlements(context.Background(), caller, uuid.New(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

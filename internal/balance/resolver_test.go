package balance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func evenExpense(paidBy uuid.UUID, amount string, share string, participants ...uuid.UUID) LedgerExpense {
	e := LedgerExpense{PaidBy: paidBy, Amount: money(amount)}
	for _, p := range participants {
		e.Splits = append(e.Splits, LedgerSplit{ParticipantID: p, Amount: money(share)})
	}
	return e
}

func balanceOf(t *testing.T, nets []NetBalance, id uuid.UUID) decimal.Decimal {
	t.Helper()
	for _, n := range nets {
		if n.ParticipantID == id {
			return n.Balance
		}
	}
	t.Fatalf("participant %s missing from balances", id)
	return decimal.Zero
}

func TestNetBalancesSingleExpense(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "90", "30", a, b, c),
	}

	nets := NetBalances(participants, expenses)
	require.Len(t, nets, 3)

	assert.True(t, balanceOf(t, nets, a).Equal(money("60")))
	assert.True(t, balanceOf(t, nets, b).Equal(money("-30")))
	assert.True(t, balanceOf(t, nets, c).Equal(money("-30")))
}

func TestNetBalancesConservation(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
		{ID: d, Name: "Dave", Invited: true},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "90", "30", a, b, c),
		evenExpense(b, "30", "15", b, c),
		{PaidBy: c, Amount: money("100"), Splits: []LedgerSplit{
			{ParticipantID: a, Amount: money("33.34")},
			{ParticipantID: c, Amount: money("33.33")},
			{ParticipantID: d, Amount: money("33.33")},
		}},
	}

	nets := NetBalances(participants, expenses)

	sum := decimal.Zero
	for _, n := range nets {
		sum = sum.Add(n.Balance)
	}
	assert.True(t, sum.IsZero(), "net balances sum to %s", sum)
}

func TestNetBalancesIncludesSettledParticipants(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob", Invited: true},
	}

	nets := NetBalances(participants, nil)
	require.Len(t, nets, 2)
	for _, n := range nets {
		assert.True(t, n.Balance.IsZero())
	}
}

func TestNetBalancesIdempotent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "10.01", "5.00", a, b),
	}
	expenses[0].Splits[1].Amount = money("5.01")

	first := NetBalances(participants, expenses)
	second := NetBalances(participants, expenses)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ParticipantID, second[i].ParticipantID)
		assert.True(t, first[i].Balance.Equal(second[i].Balance))
	}
}

func TestSettlementsDebtorNetsAgainstSoleCreditor(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "90", "30", a, b, c),
		evenExpense(b, "30", "15", b, c),
	}

	// Carol owes 45 in total and Alice is the only net creditor, so Bob's
	// payment nets out and Carol's whole debt points at Alice.
	settlements := Settlements(participants, expenses, c)
	require.Len(t, settlements, 1)
	assert.Equal(t, a, settlements[0].CounterpartyID)
	assert.Equal(t, "Alice", settlements[0].CounterpartyName)
	assert.Equal(t, DirectionOwes, settlements[0].Direction)
	assert.True(t, settlements[0].Amount.Equal(money("45")))
}

func TestSettlementsCreditorSeesAllDebtors(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "90", "30", a, b, c),
		evenExpense(b, "30", "15", b, c),
	}

	settlements := Settlements(participants, expenses, a)
	require.Len(t, settlements, 2)

	// Sorted by amount descending.
	assert.Equal(t, c, settlements[0].CounterpartyID)
	assert.True(t, settlements[0].Amount.Equal(money("45")))
	assert.Equal(t, DirectionOwed, settlements[0].Direction)

	assert.Equal(t, b, settlements[1].CounterpartyID)
	assert.True(t, settlements[1].Amount.Equal(money("15")))
	assert.Equal(t, DirectionOwed, settlements[1].Direction)
}

func TestSettlementsClosure(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
		{ID: d, Name: "Dave", Invited: true},
	}
	expenses := []LedgerExpense{
		evenExpense(a, "100", "25", a, b, c, d),
		evenExpense(b, "60", "20", a, b, c),
		evenExpense(d, "40", "20", c, d),
	}

	nets := NetBalances(participants, expenses)
	for _, n := range nets {
		settlements := Settlements(participants, expenses, n.ParticipantID)
		sum := decimal.Zero
		for _, s := range settlements {
			sum = sum.Add(s.Amount)
		}
		assert.True(t, sum.Equal(n.Balance.Abs()),
			"%s: settlements sum %s, net %s", n.Name, sum, n.Balance)
	}
}

func TestSettlementsEmptyWhenSettled(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
	}

	// Two mirrored expenses cancel out exactly.
	expenses := []LedgerExpense{
		evenExpense(a, "20", "10", a, b),
		evenExpense(b, "20", "10", a, b),
	}

	assert.Empty(t, Settlements(participants, expenses, a))
	assert.Empty(t, Settlements(participants, expenses, b))
}

func TestSettlementsTieBreakByName(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	participants := []Participant{
		{ID: a, Name: "Alice"},
		{ID: b, Name: "Bob"},
		{ID: c, Name: "Carol"},
	}

	// Bob and Carol each owe Alice the same amount.
	expenses := []LedgerExpense{
		evenExpense(a, "60", "20", a, b, c),
	}

	settlements := Settlements(participants, expenses, a)
	require.Len(t, settlements, 2)
	assert.Equal(t, "Bob", settlements[0].CounterpartyName)
	assert.Equal(t, "Carol", settlements[1].CounterpartyName)
	assert.True(t, settlements[0].Amount.Equal(settlements[1].Amount))
}

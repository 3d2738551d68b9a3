package balance

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction says which way money flows in a settlement, from the perspective
// of the participant the settlement list was computed for.
type Direction string

const (
	DirectionOwes Direction = "owes"
	DirectionOwed Direction = "owed"
)

// Participant is anyone splits can reference in a group, registered member or
// invited placeholder.
type Participant struct {
	ID      uuid.UUID
	Name    string
	Invited bool
}

// LedgerSplit is one participant's share of a ledger expense.
type LedgerSplit struct {
	ParticipantID uuid.UUID
	Amount        decimal.Decimal
}

// LedgerExpense is the slice of an expense the resolver needs: who paid what,
// and how it was divided.
type LedgerExpense struct {
	PaidBy uuid.UUID
	Amount decimal.Decimal
	Splits []LedgerSplit
}

// NetBalance is a participant's total paid minus total owed across the
// group's full history. Positive means others owe them.
type NetBalance struct {
	ParticipantID uuid.UUID
	Name          string
	Invited       bool
	Balance       decimal.Decimal
}

// Settlement is one resolved debt edge touching the queried participant.
type Settlement struct {
	CounterpartyID   uuid.UUID
	CounterpartyName string
	Amount           decimal.Decimal
	Direction        Direction
}

// NetBalances computes every participant's net balance from the raw ledger.
// Every listed participant appears in the result, settled ones with a zero
// balance. The sum over all participants is always exactly zero because each
// expense contributes its amount once as credit and once, distributed over
// its splits, as debt.
func NetBalances(participants []Participant, expenses []LedgerExpense) []NetBalance {
	byID := make(map[uuid.UUID]*NetBalance, len(participants))
	result := make([]NetBalance, len(participants))
	for i, p := range participants {
		result[i] = NetBalance{
			ParticipantID: p.ID,
			Name:          p.Name,
			Invited:       p.Invited,
			Balance:       decimal.Zero,
		}
		byID[p.ID] = &result[i]
	}

	for _, e := range expenses {
		if payer, ok := byID[e.PaidBy]; ok {
			payer.Balance = payer.Balance.Add(e.Amount)
		}
		for _, s := range e.Splits {
			if owner, ok := byID[s.ParticipantID]; ok {
				owner.Balance = owner.Balance.Sub(s.Amount)
			}
		}
	}

	sortNetBalances(result)
	return result
}

// sortNetBalances orders balances by display name, then ID. Both the ledger
// path and the aggregated fast path present balances in this order.
func sortNetBalances(nets []NetBalance) {
	sort.Slice(nets, func(i, j int) bool {
		if nets[i].Name != nets[j].Name {
			return nets[i].Name < nets[j].Name
		}
		return nets[i].ParticipantID.String() < nets[j].ParticipantID.String()
	})
}

// transfer is a directed debt edge produced by settlement allocation.
type transfer struct {
	debtor   *NetBalance
	creditor *NetBalance
	amount   decimal.Decimal
}

// settleTransfers clears all net balances with a deterministic greedy
// matching: the largest outstanding debt is repeatedly paired with the
// largest outstanding credit. The result is a small set of transfers whose
// per-participant sums equal the net balances exactly.
func settleTransfers(nets []NetBalance) []transfer {
	var debtors, creditors []*NetBalance
	for i := range nets {
		n := nets[i]
		remaining := &NetBalance{
			ParticipantID: n.ParticipantID,
			Name:          n.Name,
			Invited:       n.Invited,
			Balance:       n.Balance,
		}
		switch {
		case remaining.Balance.IsNegative():
			debtors = append(debtors, remaining)
		case remaining.Balance.IsPositive():
			creditors = append(creditors, remaining)
		}
	}

	byMagnitude := func(side []*NetBalance) {
		sort.Slice(side, func(i, j int) bool {
			a, b := side[i].Balance.Abs(), side[j].Balance.Abs()
			if !a.Equal(b) {
				return a.GreaterThan(b)
			}
			if side[i].Name != side[j].Name {
				return side[i].Name < side[j].Name
			}
			return side[i].ParticipantID.String() < side[j].ParticipantID.String()
		})
	}
	byMagnitude(debtors)
	byMagnitude(creditors)

	var transfers []transfer
	di, ci := 0, 0
	for di < len(debtors) && ci < len(creditors) {
		debtor, creditor := debtors[di], creditors[ci]
		debt := debtor.Balance.Neg()
		credit := creditor.Balance

		amount := decimal.Min(debt, credit)
		if amount.IsPositive() {
			transfers = append(transfers, transfer{debtor: debtor, creditor: creditor, amount: amount})
		}

		debtor.Balance = debtor.Balance.Add(amount)
		creditor.Balance = creditor.Balance.Sub(amount)
		if debtor.Balance.IsZero() {
			di++
		}
		if creditor.Balance.IsZero() {
			ci++
		}
	}
	return transfers
}

// Settlements resolves which counterparties the given participant owes or is
// owed by, and how much. The per-participant sums of the underlying transfer
// set equal the net balances, so the returned amounts add up to the absolute
// value of the participant's own net balance. A settled participant gets an
// empty list.
func Settlements(participants []Participant, expenses []LedgerExpense, participantID uuid.UUID) []Settlement {
	nets := NetBalances(participants, expenses)
	transfers := settleTransfers(nets)

	var settlements []Settlement
	for _, t := range transfers {
		switch participantID {
		case t.debtor.ParticipantID:
			settlements = append(settlements, Settlement{
				CounterpartyID:   t.creditor.ParticipantID,
				CounterpartyName: t.creditor.Name,
				Amount:           t.amount,
				Direction:        DirectionOwes,
			})
		case t.creditor.ParticipantID:
			settlements = append(settlements, Settlement{
				CounterpartyID:   t.debtor.ParticipantID,
				CounterpartyName: t.debtor.Name,
				Amount:           t.amount,
				Direction:        DirectionOwed,
			})
		}
	}

	sort.Slice(settlements, func(i, j int) bool {
		if !settlements[i].Amount.Equal(settlements[j].Amount) {
			return settlements[i].Amount.GreaterThan(settlements[j].Amount)
		}
		return settlements[i].CounterpartyName < settlements[j].CounterpartyName
	})
	return settlements
}

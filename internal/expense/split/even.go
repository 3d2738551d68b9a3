// Package split computes per-participant shares of an expense.
//
// Shares are computed in integer minor units (cents) so the split amounts
// always sum to the expense amount exactly. The only supported policy is an
// equal share per participant; the rounding remainder goes to a single
// deterministic participant.
package split

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoParticipants    = errors.New("at least one participant is required")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrSubCentAmount     = errors.New("amount cannot have more than two decimal places")
)

// Share is one participant's computed portion of an expense.
type Share struct {
	ParticipantID uuid.UUID
	Amount        decimal.Decimal
}

// Validate checks that amount and participants form a splittable expense.
func Validate(amount decimal.Decimal, participantIDs []uuid.UUID) error {
	if len(participantIDs) == 0 {
		return ErrNoParticipants
	}
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !amount.Shift(2).IsInteger() {
		return ErrSubCentAmount
	}
	return nil
}

// Even divides amount equally among the participants.
//
// Each share is amount/N rounded down to a cent; the remainder cents are
// added to the participant with the smallest ID, so the same participant set
// always yields the same allocation regardless of input order. Output order
// follows input order.
func Even(amount decimal.Decimal, participantIDs []uuid.UUID) ([]Share, error) {
	if err := Validate(amount, participantIDs); err != nil {
		return nil, err
	}

	n := int64(len(participantIDs))
	totalCents := amount.Shift(2).IntPart()
	baseCents := totalCents / n
	remainder := totalCents % n

	adjusted := smallestIDIndex(participantIDs)

	shares := make([]Share, len(participantIDs))
	for i, id := range participantIDs {
		cents := baseCents
		if i == adjusted {
			cents += remainder
		}
		shares[i] = Share{
			ParticipantID: id,
			Amount:        decimal.New(cents, -2),
		}
	}
	return shares, nil
}

func smallestIDIndex(ids []uuid.UUID) int {
	idx := 0
	for i := 1; i < len(ids); i++ {
		if ids[i].String() < ids[idx].String() {
			idx = i
		}
	}
	return idx
}

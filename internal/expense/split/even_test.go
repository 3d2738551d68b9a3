package split

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestEvenExactDivision(t *testing.T) {
	participants := ids(3)
	shares, err := Even(decimal.RequireFromString("90"), participants)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	for i, share := range shares {
		assert.Equal(t, participants[i], share.ParticipantID)
		assert.True(t, share.Amount.Equal(decimal.RequireFromString("30")),
			"share %d = %s", i, share.Amount)
	}
}

func TestEvenRemainderGoesToOneParticipant(t *testing.T) {
	participants := ids(3)
	amount := decimal.RequireFromString("100")

	shares, err := Even(amount, participants)
	require.NoError(t, err)

	base := decimal.RequireFromString("33.33")
	adjusted := 0
	for _, share := range shares {
		if !share.Amount.Equal(base) {
			adjusted++
			assert.True(t, share.Amount.Equal(decimal.RequireFromString("33.34")))
		}
	}
	assert.Equal(t, 1, adjusted)
}

func TestEvenSumsExactly(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
	}{
		{"even division", "90", 3},
		{"one remainder cent", "100", 3},
		{"many participants", "0.07", 5},
		{"two decimals", "19.99", 7},
		{"single participant", "42.01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			shares, err := Even(amount, ids(tt.n))
			require.NoError(t, err)

			sum := decimal.Zero
			for _, share := range shares {
				sum = sum.Add(share.Amount)
			}
			assert.True(t, sum.Equal(amount), "sum %s != amount %s", sum, amount)
		})
	}
}

func TestEvenDeterministicAcrossInputOrder(t *testing.T) {
	participants := ids(4)
	amount := decimal.RequireFromString("10.01")

	first, err := Even(amount, participants)
	require.NoError(t, err)

	reversed := make([]uuid.UUID, len(participants))
	for i, id := range participants {
		reversed[len(participants)-1-i] = id
	}
	second, err := Even(amount, reversed)
	require.NoError(t, err)

	byID := make(map[uuid.UUID]decimal.Decimal)
	for _, share := range first {
		byID[share.ParticipantID] = share.Amount
	}
	for _, share := range second {
		assert.True(t, share.Amount.Equal(byID[share.ParticipantID]),
			"participant %s allocation changed with input order", share.ParticipantID)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []uuid.UUID
		wantErr      error
	}{
		{"no participants", "10", nil, ErrNoParticipants},
		{"zero amount", "0", ids(2), ErrNonPositiveAmount},
		{"negative amount", "-5", ids(2), ErrNonPositiveAmount},
		{"sub-cent amount", "10.001", ids(2), ErrSubCentAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decimal.RequireFromString(tt.amount), tt.participants)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = Even(decimal.RequireFromString(tt.amount), tt.participants)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

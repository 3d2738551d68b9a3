package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsSetKind(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("missing"), KindNotFound},
		{"authorization", Authorization("denied"), KindAuthorization},
		{"persistence", Persistence(cause, "write failed"), KindPersistence},
		{"aggregation", AggregationUnavailable(cause), KindAggregationUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}

func TestValidationPreservesPercentInWrappedMessage(t *testing.T) {
	cause := errors.New("rate must be under 100%")

	err := Validation("%s", cause)
	assert.Contains(t, err.Error(), "rate must be under 100%")
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("saving expense: %w", Persistence(cause, "insert failed"))

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, IsKind(err, KindPersistence))
	assert.True(t, errors.Is(err, &Error{Kind: KindPersistence}))
	assert.ErrorIs(t, err, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindValidation))
}

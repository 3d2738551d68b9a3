package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParticipantKind discriminates registered accounts from invited
// placeholder identities.
type ParticipantKind string

const (
	KindRegistered ParticipantKind = "registered"
	KindInvited    ParticipantKind = "invited"
)

// Expense represents a shared expense in a group. Expenses are written once
// and never updated in place.
type Expense struct {
	ID            uuid.UUID       `json:"id"`
	GroupID       uuid.UUID       `json:"group_id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	PaidBy        uuid.UUID       `json:"paid_by"`
	PaidByInvited bool            `json:"is_paid_by_invited_user"`
	Note          *string         `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Populated via JOIN.
	PayerName string `json:"payer_name,omitempty"`
}

// Split is one participant's share of one expense. For invited participants
// the email is never null: a placeholder is synthesized when none was given.
type Split struct {
	ID            uuid.UUID       `json:"id"`
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ParticipantID uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Invited       bool            `json:"is_invited_user"`
	InvitedEmail  *string         `json:"invited_user_email,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Populated via JOIN.
	ParticipantName string `json:"participant_name,omitempty"`
}

// ExpenseWithSplits combines an expense with its splits.
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}

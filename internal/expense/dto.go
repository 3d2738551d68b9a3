package expense

import "github.com/shopspring/decimal"

// ParticipantInput references a participant in a request, tagged with its
// variant. Email is only meaningful for invited participants.
type ParticipantInput struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"` // registered | invited
	Email *string `json:"email,omitempty"`
}

// RecordExpenseRequest represents the request to record an expense split
// evenly among the listed participants.
type RecordExpenseRequest struct {
	GroupID      string             `json:"group_id"`
	Title        string             `json:"title"`
	Amount       decimal.Decimal    `json:"amount"`
	PaidBy       ParticipantInput   `json:"paid_by"`
	Participants []ParticipantInput `json:"participants"`
	Note         *string            `json:"note,omitempty"`
}

// ExpenseResponse represents the response for an expense.
type ExpenseResponse struct {
	ID            string           `json:"id"`
	GroupID       string           `json:"group_id"`
	Title         string           `json:"title"`
	Amount        string           `json:"amount"`
	PaidBy        string           `json:"paid_by"`
	PaidByInvited bool             `json:"is_paid_by_invited_user"`
	PayerName     string           `json:"payer_name,omitempty"`
	Note          *string          `json:"note,omitempty"`
	CreatedAt     string           `json:"created_at"`
	Splits        []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split.
type SplitResponse struct {
	ID              string  `json:"id"`
	ExpenseID       string  `json:"expense_id"`
	ParticipantID   string  `json:"participant_id"`
	ParticipantName string  `json:"participant_name,omitempty"`
	Amount          string  `json:"amount"`
	Invited         bool    `json:"is_invited_user"`
	InvitedEmail    *string `json:"invited_user_email,omitempty"`
}

// ListExpensesResponse wraps a page of expenses with the group total.
type ListExpensesResponse struct {
	Expenses   []*ExpenseResponse `json:"expenses"`
	TotalSpent string             `json:"total_spent"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// ToResponse converts an Expense model to an ExpenseResponse DTO.
// Amounts are rendered with two decimal places at this boundary only.
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID.String(),
		GroupID:       e.GroupID.String(),
		Title:         e.Title,
		Amount:        e.Amount.StringFixed(2),
		PaidBy:        e.PaidBy.String(),
		PaidByInvited: e.PaidByInvited,
		PayerName:     e.PayerName,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO.
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		ID:              s.ID.String(),
		ExpenseID:       s.ExpenseID.String(),
		ParticipantID:   s.ParticipantID.String(),
		ParticipantName: s.ParticipantName,
		Amount:          s.Amount.StringFixed(2),
		Invited:         s.Invited,
		InvitedEmail:    s.InvitedEmail,
	}
}

package expense

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateExpenseWithSplits inserts the expense and all of its splits in one
// transaction. Either everything is stored or nothing is.
func (r *PostgresRepository) CreateExpenseWithSplits(ctx context.Context, e *Expense, splits []*Split) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Persistence(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (group_id, title, amount, paid_by, is_paid_by_invited_user, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.GroupID, e.Title, e.Amount, e.PaidBy, e.PaidByInvited, e.Note).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return apperr.Persistence(err, "failed to create expense")
	}

	for _, sp := range splits {
		sp.ExpenseID = e.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO expense_splits (expense_id, user_id, amount, is_invited_user, invited_user_email)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, sp.ExpenseID, sp.ParticipantID, sp.Amount, sp.Invited, sp.InvitedEmail).Scan(&sp.ID, &sp.CreatedAt)
		if err != nil {
			return apperr.Persistence(err, "failed to create split")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence(err, "failed to commit expense")
	}
	return nil
}

// GetByID retrieves an expense with the payer's display name resolved against
// either the users or invited_users table. Returns nil without error when
// absent.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	e := &Expense{}
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.group_id, e.title, e.amount, e.paid_by, e.is_paid_by_invited_user,
		       e.note, e.created_at, COALESCE(u.name, iu.name, '')
		FROM expenses e
		LEFT JOIN users u ON u.id = e.paid_by AND NOT e.is_paid_by_invited_user
		LEFT JOIN invited_users iu ON iu.id = e.paid_by AND e.is_paid_by_invited_user
		WHERE e.id = $1
	`, id).Scan(&e.ID, &e.GroupID, &e.Title, &e.Amount, &e.PaidBy, &e.PaidByInvited,
		&e.Note, &e.CreatedAt, &e.PayerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get expense")
	}
	return e, nil
}

// SplitsByExpense retrieves the splits of one expense with participant names.
func (r *PostgresRepository) SplitsByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Split, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.is_invited_user,
		       s.invited_user_email, s.created_at, COALESCE(u.name, iu.name, '')
		FROM expense_splits s
		LEFT JOIN users u ON u.id = s.user_id AND NOT s.is_invited_user
		LEFT JOIN invited_users iu ON iu.id = s.user_id AND s.is_invited_user
		WHERE s.expense_id = $1
		ORDER BY s.created_at, s.id
	`, expenseID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get splits")
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		sp := &Split{}
		err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.ParticipantID, &sp.Amount, &sp.Invited,
			&sp.InvitedEmail, &sp.CreatedAt, &sp.ParticipantName)
		if err != nil {
			return nil, apperr.Persistence(err, "failed to scan split")
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate splits")
	}
	return splits, nil
}

// ListByGroup retrieves a page of the group's expenses, newest first.
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM expenses WHERE group_id = $1
	`, groupID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to count expenses")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.group_id, e.title, e.amount, e.paid_by, e.is_paid_by_invited_user,
		       e.note, e.created_at, COALESCE(u.name, iu.name, '')
		FROM expenses e
		LEFT JOIN users u ON u.id = e.paid_by AND NOT e.is_paid_by_invited_user
		LEFT JOIN invited_users iu ON iu.id = e.paid_by AND e.is_paid_by_invited_user
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC, e.id
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to list expenses")
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		err := rows.Scan(&e.ID, &e.GroupID, &e.Title, &e.Amount, &e.PaidBy, &e.PaidByInvited,
			&e.Note, &e.CreatedAt, &e.PayerName)
		if err != nil {
			return nil, 0, apperr.Persistence(err, "failed to scan expense")
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Persistence(err, "failed to iterate expenses")
	}
	return expenses, total, nil
}

// GroupTotalSpent sums every expense amount in the group.
func (r *PostgresRepository) GroupTotalSpent(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE group_id = $1
	`, groupID).Scan(&total)
	if err != nil {
		return decimal.Zero, apperr.Persistence(err, "failed to sum expenses")
	}
	return total, nil
}

// MemberExists reports whether the user is a registered member of the group.
func (r *PostgresRepository) MemberExists(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, apperr.Persistence(err, "failed to check membership")
	}
	return exists, nil
}

// InvitedParticipantExists reports whether the invited participant belongs to
// the group.
func (r *PostgresRepository) InvitedParticipantExists(ctx context.Context, groupID, invitedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invited_users WHERE group_id = $1 AND id = $2
		)
	`, groupID, invitedID).Scan(&exists)
	if err != nil {
		return false, apperr.Persistence(err, "failed to check invited participant")
	}
	return exists, nil
}

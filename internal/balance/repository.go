package balance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// PostgresRepository loads ledger data for the resolver and runs the
// aggregated-balance database function.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a new balance repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Participants retrieves everyone splits can reference in the group:
// registered members plus invited placeholders.
func (r *PostgresRepository) Participants(ctx context.Context, groupID uuid.UUID) ([]Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, false
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		UNION ALL
		SELECT iu.id, iu.name, true
		FROM invited_users iu
		WHERE iu.group_id = $1
	`, groupID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get participants")
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Invited); err != nil {
			return nil, apperr.Persistence(err, "failed to scan participant")
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate participants")
	}
	return participants, nil
}

// Ledger retrieves the group's full expense and split history in resolver
// form, oldest first.
func (r *PostgresRepository) Ledger(ctx context.Context, groupID uuid.UUID) ([]LedgerExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.paid_by, e.amount, s.user_id, s.amount
		FROM expenses e
		JOIN expense_splits s ON s.expense_id = e.id
		WHERE e.group_id = $1
		ORDER BY e.created_at, e.id
	`, groupID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load ledger")
	}
	defer rows.Close()

	var (
		expenses []LedgerExpense
		current  uuid.UUID
	)
	for rows.Next() {
		var (
			expenseID uuid.UUID
			e         LedgerExpense
			s         LedgerSplit
		)
		if err := rows.Scan(&expenseID, &e.PaidBy, &e.Amount, &s.ParticipantID, &s.Amount); err != nil {
			return nil, apperr.Persistence(err, "failed to scan ledger row")
		}
		if len(expenses) == 0 || expenseID != current {
			expenses = append(expenses, e)
			current = expenseID
		}
		last := &expenses[len(expenses)-1]
		last.Splits = append(last.Splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate ledger")
	}
	return expenses, nil
}

// RPCBalances calls the get_balances database function, the aggregated fast
// path for net balances. A missing function maps to an aggregation
// unavailability so callers can fall back to the raw ledger.
func (r *PostgresRepository) RPCBalances(ctx context.Context, groupID uuid.UUID) ([]NetBalance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.user_id, b.user_name, b.balance, (iu.id IS NOT NULL)
		FROM get_balances($1) b
		LEFT JOIN invited_users iu ON iu.id = b.user_id
	`, groupID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "42883" { // undefined_function
			return nil, apperr.AggregationUnavailable(err)
		}
		return nil, apperr.Persistence(err, "failed to call get_balances")
	}
	defer rows.Close()

	var nets []NetBalance
	for rows.Next() {
		var n NetBalance
		if err := rows.Scan(&n.ParticipantID, &n.Name, &n.Balance, &n.Invited); err != nil {
			return nil, apperr.Persistence(err, "failed to scan balance row")
		}
		nets = append(nets, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate balances")
	}
	return nets, nil
}

// IsMember reports whether the user is a registered member of the group.
func (r *PostgresRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
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

package group

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/apperr"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a new group repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateWithCreator inserts the group and the creator's admin membership in
// one transaction so a group can never exist without its creator.
func (r *PostgresRepository) CreateWithCreator(ctx context.Context, name string, creatorID uuid.UUID) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	g := &Group{Name: name, CreatedBy: creatorID}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO groups (name, created_by)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, name, creatorID).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to create group")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, is_admin)
		VALUES ($1, $2, true)
	`, g.ID, creatorID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to add creator membership")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence(err, "failed to commit group creation")
	}
	return g, nil
}

// GetByID retrieves a group by ID. Returns nil without error when absent.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	g := &Group{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_by, created_at FROM groups WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get group")
	}
	return g, nil
}

// ListByUser retrieves the groups a user is a member of, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Group, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_members WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to count groups")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to list groups")
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, 0, apperr.Persistence(err, "failed to scan group")
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Persistence(err, "failed to iterate groups")
	}
	return groups, total, nil
}

// Delete removes a group; memberships, invitations, expenses, and splits
// cascade at the schema level.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return apperr.Persistence(err, "failed to delete group")
	}
	return nil
}

// Members retrieves the registered members of a group with display info.
func (r *PostgresRepository) Members(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gm.id, gm.group_id, gm.user_id, gm.is_admin, gm.created_at, u.name, u.email
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY u.name
	`, groupID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.IsAdmin, &m.CreatedAt, &m.Name, &m.Email); err != nil {
			return nil, apperr.Persistence(err, "failed to scan member")
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate members")
	}
	return members, nil
}

// GetMember retrieves one membership. Returns nil without error when absent.
func (r *PostgresRepository) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, user_id, is_admin, created_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID).Scan(&m.ID, &m.GroupID, &m.UserID, &m.IsAdmin, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get member")
	}
	return m, nil
}

// AddMember inserts a membership.
func (r *PostgresRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (*Member, error) {
	m := &Member{GroupID: groupID, UserID: userID, IsAdmin: isAdmin}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO group_members (group_id, user_id, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, groupID, userID, isAdmin).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to add member")
	}
	return m, nil
}

// RemoveMember deletes a membership and reports whether a row was removed.
func (r *PostgresRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return false, apperr.Persistence(err, "failed to remove member")
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// SetMemberAdmin updates the admin flag and reports whether a row matched.
func (r *PostgresRepository) SetMemberAdmin(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE group_members SET is_admin = $3 WHERE group_id = $1 AND user_id = $2
	`, groupID, userID, isAdmin)
	if err != nil {
		return false, apperr.Persistence(err, "failed to update member")
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Invitations retrieves the invited participants of a group.
func (r *PostgresRepository) Invitations(ctx context.Context, groupID uuid.UUID) ([]*Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, name, email, invited_by, status, created_at
		FROM invited_users
		WHERE group_id = $1
		ORDER BY name
	`, groupID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get invitations")
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.Name, &inv.Email, &inv.InvitedBy, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, apperr.Persistence(err, "failed to scan invitation")
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate invitations")
	}
	return invitations, nil
}

// GetInvitationByEmail retrieves one invitation by (group, email).
// Returns nil without error when absent.
func (r *PostgresRepository) GetInvitationByEmail(ctx context.Context, groupID uuid.UUID, email string) (*Invitation, error) {
	inv := &Invitation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, email, invited_by, status, created_at
		FROM invited_users
		WHERE group_id = $1 AND email = $2
	`, groupID, email).Scan(&inv.ID, &inv.GroupID, &inv.Name, &inv.Email, &inv.InvitedBy, &inv.Status, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get invitation")
	}
	return inv, nil
}

// CreateInvitation inserts an invited-participant placeholder.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, inv *Invitation) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO invited_users (group_id, name, email, invited_by, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, inv.GroupID, inv.Name, inv.Email, inv.InvitedBy, inv.Status).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return apperr.Persistence(err, "failed to create invitation")
	}
	return nil
}

// PendingInviteGroupIDs lists the groups holding a pending invitation for
// the email. Satisfies the user feature's GroupDirectory interface.
func (r *PostgresRepository) PendingInviteGroupIDs(ctx context.Context, email string) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT group_id FROM invited_users WHERE email = $1 AND status = $2
	`, email, InvitationPending)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to find pending invitations")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Persistence(err, "failed to scan invitation group")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to iterate pending invitations")
	}
	return ids, nil
}

// AddMemberByPromotion inserts a non-admin membership during invitation
// promotion, tolerating an existing row.
func (r *PostgresRepository) AddMemberByPromotion(ctx context.Context, groupID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, is_admin)
		VALUES ($1, $2, false)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID)
	if err != nil {
		return apperr.Persistence(err, "failed to promote invitation")
	}
	return nil
}

// MarkInvitationsRegistered flips every invitation for the email to
// registered. The invitation rows are kept: their IDs still identify the
// participant on historical expenses and splits.
func (r *PostgresRepository) MarkInvitationsRegistered(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invited_users SET status = $2 WHERE email = $1
	`, email, InvitationRegistered)
	if err != nil {
		return apperr.Persistence(err, "failed to update invitation status")
	}
	return nil
}

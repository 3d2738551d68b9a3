package user

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

// NewRepository creates a new user repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, u.ID, u.Name, u.Email).Scan(&u.CreatedAt); err != nil {
		return apperr.Persistence(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID. Returns nil without error when absent.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email. Returns nil without error when absent.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, created_at FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	u := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to get user")
	}
	return u, nil
}

// List retrieves users ordered by name.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence(err, "failed to count users")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM users ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to list users")
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, 0, apperr.Persistence(err, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Persistence(err, "failed to iterate users")
	}

	return users, total, nil
}

// LookupByEmail resolves an email to a user ID and display name.
// Satisfies the group feature's UserLookup interface.
func (r *PostgresRepository) LookupByEmail(ctx context.Context, email string) (uuid.UUID, string, bool, error) {
	var id uuid.UUID
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM users WHERE email = $1`, email).Scan(&id, &name)
	if err == sql.ErrNoRows {
		return uuid.Nil, "", false, nil
	}
	if err != nil {
		return uuid.Nil, "", false, apperr.Persistence(err, "failed to look up user")
	}
	return id, name, true, nil
}

package database

import "database/sql"

// schema holds the statements that set up the tables on startup.
// Order matters: groups before group_members/invited_users/expenses,
// expenses before expense_splits.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS groups (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    created_by UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS group_members (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id),
    is_admin BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS invited_users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    invited_by UUID NOT NULL REFERENCES users(id),
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expenses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    paid_by UUID NOT NULL,
    is_paid_by_invited_user BOOLEAN NOT NULL DEFAULT false,
    note TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expense_splits (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    expense_id UUID NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
    user_id UUID NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    is_invited_user BOOLEAN NOT NULL DEFAULT false,
    invited_user_email TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_invited_users_group_id ON invited_users(group_id);
CREATE INDEX IF NOT EXISTS idx_invited_users_email ON invited_users(email);
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_expense_splits_expense_id ON expense_splits(expense_id);
`

// balancesFunction is the server-side aggregation used as the balance fast
// path. Net balance = total paid minus total owed, over registered members
// and invited participants of the group.
const balancesFunction = `
CREATE OR REPLACE FUNCTION get_balances(p_group_id UUID)
RETURNS TABLE(user_id UUID, user_name TEXT, balance NUMERIC)
LANGUAGE sql STABLE AS $$
WITH participants AS (
    SELECT u.id, u.name
    FROM group_members gm
    JOIN users u ON u.id = gm.user_id
    WHERE gm.group_id = p_group_id
    UNION
    SELECT iu.id, iu.name
    FROM invited_users iu
    WHERE iu.group_id = p_group_id
),
paid AS (
    SELECT e.paid_by AS id, SUM(e.amount) AS total
    FROM expenses e
    WHERE e.group_id = p_group_id
    GROUP BY e.paid_by
),
owed AS (
    SELECT s.user_id AS id, SUM(s.amount) AS total
    FROM expense_splits s
    JOIN expenses e ON e.id = s.expense_id
    WHERE e.group_id = p_group_id
    GROUP BY s.user_id
)
SELECT p.id, p.name, COALESCE(pa.total, 0) - COALESCE(ow.total, 0)
FROM participants p
LEFT JOIN paid pa ON pa.id = p.id
LEFT JOIN owed ow ON ow.id = p.id;
$$;
`

// Migrate creates the tables and the balance aggregation function.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(balancesFunction)
	return err
}

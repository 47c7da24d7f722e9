package postgres

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL DEFAULT '',
	referral_code TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));

ALTER TABLE users ADD COLUMN IF NOT EXISTS role TEXT NOT NULL DEFAULT 'user';

CREATE TABLE IF NOT EXISTS ledger_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	amount NUMERIC NOT NULL CHECK (amount >= 0),
	type TEXT NOT NULL CHECK (type IN ('earning', 'withdrawal', 'bonus')),
	status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed')),
	checkin_day TEXT,
	date TIMESTAMPTZ NOT NULL,
	seq BIGSERIAL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_date ON ledger_entries (user_id, date DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_checkin_day
	ON ledger_entries (user_id, title, checkin_day) WHERE checkin_day IS NOT NULL;

CREATE TABLE IF NOT EXISTS withdrawals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL,
	method TEXT NOT NULL CHECK (method IN ('bank', 'ewallet')),
	details TEXT NOT NULL,
	amount NUMERIC NOT NULL,
	status TEXT NOT NULL DEFAULT 'Pending',
	entry_id TEXT NOT NULL REFERENCES ledger_entries (id),
	date TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_withdrawals_user_date ON withdrawals (user_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_withdrawals_status_date ON withdrawals (status, date DESC);
`

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE active
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, name, email, password_hash, referral_code, role) VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetUserById = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE id = $1 AND active`

	queryGetUserByEmail = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1) AND active`

	// Ledger entry queries
	queryInsertEntry = `
		INSERT INTO ledger_entries (id, user_id, title, amount, type, status, checkin_day, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryFindEntries = `
		SELECT id, user_id, title, amount, type, status, date
		FROM ledger_entries
		WHERE user_id = $1
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR title = $3)
		  AND ($4 = '' OR status = $4)
		ORDER BY date DESC, seq DESC
		LIMIT $5`

	queryUpdateEntryStatus = `
		UPDATE ledger_entries SET status = $1, updated_at = now() WHERE id = $2`

	queryGetUserEntryAmounts = `
		SELECT type, status, amount FROM ledger_entries WHERE user_id = $1`

	// Serializes balance checks per user for the rest of the transaction
	queryLockUser = `SELECT pg_advisory_xact_lock(hashtext($1))`

	// Withdrawal queries
	queryInsertWithdrawal = `
		INSERT INTO withdrawals (id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	queryGetWithdrawals = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY date DESC`

	queryListWithdrawals = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE ($1 = '' OR status = $1)
		ORDER BY date DESC`

	queryGetWithdrawalForUpdate = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE id = $1
		FOR UPDATE`

	queryUpdateWithdrawalStatus = `
		UPDATE withdrawals SET status = $1, updated_at = $2 WHERE id = $3`
)

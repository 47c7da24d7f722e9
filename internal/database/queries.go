/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, name, email, password_hash, referral_code, role) VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE id = ? AND active = 1`

	queryGetUserByEmail = `
		SELECT id, name, email, password_hash, referral_code, role, created_at, updated_at
		FROM users
		WHERE email = ? COLLATE NOCASE AND active = 1`

	// Ledger entry queries
	queryInsertEntry = `
		INSERT INTO ledger_entries (id, user_id, title, amount, type, status, checkin_day, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryFindEntries = `
		SELECT id, user_id, title, amount, type, status, date
		FROM ledger_entries
		WHERE user_id = ?
		  AND (? = '' OR type = ?)
		  AND (? = '' OR title = ?)
		  AND (? = '' OR status = ?)
		ORDER BY date DESC, rowid DESC
		LIMIT ?`

	queryUpdateEntryStatus = `
		UPDATE ledger_entries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	queryGetUserEntryAmounts = `
		SELECT type, status, amount FROM ledger_entries WHERE user_id = ?`

	// Withdrawal queries
	queryInsertWithdrawal = `
		INSERT INTO withdrawals (id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetWithdrawals = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE user_id = ?
		ORDER BY date DESC`

	queryListWithdrawals = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE (? = '' OR status = ?)
		ORDER BY date DESC`

	queryGetWithdrawalById = `
		SELECT id, user_id, user_name, method, details, amount, status, entry_id, date, updated_at
		FROM withdrawals
		WHERE id = ?`

	queryUpdateWithdrawalStatus = `
		UPDATE withdrawals SET status = ?, updated_at = ? WHERE id = ?`
)

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
		SELECT id, name, email, phone, verification_level, created_at, updated_at
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (id, name, email, phone, verification_level) VALUES (?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, name, email, phone, verification_level, created_at, updated_at
		FROM users
		WHERE id = ? AND active = 1`

	queryGetUserByEmail = `
		SELECT id, name, email, phone, verification_level, created_at, updated_at
		FROM users
		WHERE email = ? AND active = 1`

	// Recipient queries
	queryInsertRecipient = `
		INSERT INTO recipients (id, user_id, type, name, avatar, country, currency,
		                        bank_code, account_number, bank_name, phone, natural_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetUserRecipients = `
		SELECT id, user_id, type, name, avatar, country, currency,
		       bank_code, account_number, bank_name, phone, created_at
		FROM recipients
		WHERE user_id = ?
		ORDER BY created_at, id`

	queryGetRecipient = `
		SELECT id, user_id, type, name, avatar, country, currency,
		       bank_code, account_number, bank_name, phone, created_at
		FROM recipients
		WHERE user_id = ? AND id = ?`

	queryDeleteRecipient = `
		DELETE FROM recipients WHERE user_id = ? AND id = ?`

	// Key-value queries
	queryGetValue = `
		SELECT value FROM kv_store WHERE key = ?`

	queryUpsertValue = `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	// Balance queries
	queryGetBalance = `
		SELECT balance
		FROM account_balances
		WHERE user_id = ? AND asset = ?`

	queryGetAllUserBalances = `
		SELECT id, user_id, asset, balance, COALESCE(last_transaction_id, ''), version, updated_at
		FROM account_balances
		WHERE user_id = ?
		ORDER BY asset`

	queryGetLedgerAmounts = `
		SELECT ledger_amount
		FROM transactions
		WHERE user_id = ? AND currency = ?`

	// Transaction queries
	queryCheckDuplicateTransaction = `
		SELECT id FROM transactions WHERE id = ? LIMIT 1`

	queryGetAccountBalance = `
		SELECT id, balance, version
		FROM account_balances
		WHERE user_id = ? AND asset = ?`

	queryInsertAccountBalance = `
		INSERT INTO account_balances (id, user_id, asset, balance, version)
		VALUES (?, ?, ?, ?, ?)`

	queryInsertTransaction = `
		INSERT INTO transactions (
			id, reference_number, user_id, transaction_type, recipient_id, recipient_name,
			amount, currency, converted_amount, recipient_currency, exchange_rate, fee, total_paid,
			category, note, status, ledger_amount, balance_before, balance_after, created_at, settled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateAccountBalance = `
		UPDATE account_balances
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND asset = ? AND version = ?`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transaction_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	transactionColumns = `
		id, reference_number, user_id, transaction_type, recipient_id, recipient_name,
		amount, currency, converted_amount, recipient_currency, exchange_rate, fee, total_paid,
		category, note, status, created_at, settled_at`

	queryGetTransaction = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ? AND id = ?`

	queryGetTransactionHistory = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
)

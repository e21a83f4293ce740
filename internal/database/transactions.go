package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"
)

// RecordDeposit credits a completed deposit to the user's balance.
func (s *Service) RecordDeposit(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error) {
	if tx.Type != models.TransactionTypeDeposit {
		return nil, fmt.Errorf("expected deposit transaction, got %s", tx.Type)
	}
	if tx.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: deposit %s is %s", store.ErrNotTerminal, tx.Id, tx.Status)
	}
	return s.subledger.RecordTransaction(ctx, tx)
}

// RecordTransfer stores a settled send or withdrawal. A completed transfer
// debits TotalPaid; a failed one is kept for audit with no balance change.
func (s *Service) RecordTransfer(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error) {
	if tx.Type != models.TransactionTypeSend && tx.Type != models.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("expected send or withdrawal transaction, got %s", tx.Type)
	}
	if !tx.IsTerminal() {
		return nil, fmt.Errorf("%w: transfer %s is %s", store.ErrNotTerminal, tx.Id, tx.Status)
	}
	return s.subledger.RecordTransaction(ctx, tx)
}

// RecordTransaction atomically updates the balance and appends the transaction
func (s *SubledgerService) RecordTransaction(ctx context.Context, transaction *models.Transaction) (*models.LedgerEntry, error) {
	ledgerAmount := transaction.BalanceImpact()

	zap.L().Info("Recording transaction",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", transaction.UserId),
		zap.String("type", transaction.Type),
		zap.String("status", transaction.Status),
		zap.String("ledger_amount", ledgerAmount.String()))

	var existingTxId string
	err := s.db.QueryRowContext(ctx, queryCheckDuplicateTransaction, transaction.Id).Scan(&existingTxId)
	if err == nil {
		zap.L().Warn("Duplicate transaction Id detected, skipping",
			zap.String("transaction_id", transaction.Id))
		return nil, fmt.Errorf("%w: transaction %s already exists", ErrDuplicateTransaction, transaction.Id)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentBalanceStr string
	var accountId string
	var version int64

	asset := transaction.Currency
	err = tx.QueryRowContext(ctx, queryGetAccountBalance, transaction.UserId, asset).Scan(&accountId, &currentBalanceStr, &version)

	var currentBalance decimal.Decimal
	if errors.Is(err, sql.ErrNoRows) {
		accountId = uuid.New().String()
		currentBalance = decimal.Zero
		version = 1

		_, err = tx.ExecContext(ctx, queryInsertAccountBalance, accountId, transaction.UserId, asset, "0", 1)
		if err != nil {
			return nil, fmt.Errorf("failed to create account balance: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	} else {
		currentBalance, err = decimal.NewFromString(currentBalanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse current balance '%s': %w", currentBalanceStr, err)
		}
	}

	newBalance := currentBalance.Add(ledgerAmount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance=%s, required=%s", store.ErrInsufficientFunds,
			currentBalance.String(), ledgerAmount.Neg().String())
	}

	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.ReferenceNumber, transaction.UserId, transaction.Type,
		transaction.RecipientId, transaction.RecipientName,
		transaction.Amount.String(), transaction.Currency, transaction.ConvertedAmount.String(),
		transaction.RecipientCurrency, transaction.ExchangeRate.String(), transaction.Fee.String(),
		transaction.TotalPaid.String(), transaction.Category, transaction.Note, transaction.Status,
		ledgerAmount.String(), currentBalance.String(), newBalance.String(),
		transaction.CreatedAt, transaction.SettledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Update account balance (with optimistic locking)
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), transaction.Id, transaction.UserId, asset, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", ErrConcurrentModification)
	}

	if err := s.addJournalEntries(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction recorded successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", transaction.UserId),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return &models.LedgerEntry{
		Transaction:   *transaction,
		LedgerAmount:  ledgerAmount,
		BalanceBefore: currentBalance,
		BalanceAfter:  newBalance,
	}, nil
}

type journalLeg struct {
	accountType  string
	accountId    string
	debitAmount  decimal.Decimal
	creditAmount decimal.Decimal
}

// addJournalEntries creates double-entry bookkeeping entries
func (s *SubledgerService) addJournalEntries(ctx context.Context, tx *sql.Tx, transaction *models.Transaction) error {
	if transaction.Status != models.StatusCompleted {
		return nil
	}

	userAccount := fmt.Sprintf("%s_%s", transaction.UserId, transaction.Currency)
	var legs []journalLeg

	switch transaction.Type {
	case models.TransactionTypeDeposit:
		// User asset account increases, and so does what we owe the user
		legs = []journalLeg{
			{"user_asset", userAccount, transaction.Amount, decimal.Zero},
			{"system_liability", "user_deposits_" + transaction.Currency, decimal.Zero, transaction.Amount},
		}
	case models.TransactionTypeSend, models.TransactionTypeWithdrawal:
		// User pays amount + fee; the amount leaves through payout clearing
		// and the fee is revenue.
		legs = []journalLeg{
			{"user_asset", userAccount, decimal.Zero, transaction.TotalPaid},
			{"payout_clearing", transaction.Type + "_" + transaction.RecipientCurrency, transaction.Amount, decimal.Zero},
			{"fee_revenue", "fees_" + transaction.Currency, transaction.Fee, decimal.Zero},
		}
	}

	for _, leg := range legs {
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), transaction.Id, leg.accountType, leg.accountId,
			leg.debitAmount.String(), leg.creditAmount.String())
		if err != nil {
			return err
		}
	}

	return nil
}

// GetTransaction returns one transaction owned by userId
func (s *SubledgerService) GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, queryGetTransaction, userId, transactionId)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionId)
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetTransactionHistory returns paginated transaction history for a user, newest first
func (s *SubledgerService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var amountStr, convertedStr, rateStr, feeStr, totalStr string
	err := row.Scan(&tx.Id, &tx.ReferenceNumber, &tx.UserId, &tx.Type, &tx.RecipientId, &tx.RecipientName,
		&amountStr, &tx.Currency, &convertedStr, &tx.RecipientCurrency, &rateStr, &feeStr, &totalStr,
		&tx.Category, &tx.Note, &tx.Status, &tx.CreatedAt, &tx.SettledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"amount", amountStr, &tx.Amount},
		{"converted_amount", convertedStr, &tx.ConvertedAmount},
		{"exchange_rate", rateStr, &tx.ExchangeRate},
		{"fee", feeStr, &tx.Fee},
		{"total_paid", totalStr, &tx.TotalPaid},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s '%s': %w", f.name, f.raw, err)
		}
		*f.dst = value
	}

	return &tx, nil
}

package formance

import (
	"context"
	"fmt"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates. Postings carry the money; every Transaction field is
// attached as transaction metadata so history can be rebuilt from the ledger.
// ---------------------------------------------------------------------------

const numscriptDepositReceived = `vars {
  asset $asset
  number $amount
  account $user_id
  account $method
}

send [$asset $amount] (
  source = @platform:deposits:$method allowing unbounded overdraft
  destination = @users:$user_id
)

set_tx_meta("event_type", "deposit_received")
`

// numscriptTransferCompleted debits amount + fee from the user in one
// transaction: the amount to payout clearing, the fee to revenue.
const numscriptTransferCompleted = `vars {
  asset $asset
  number $amount
  number $fee
  account $user_id
  account $payout_kind
}

send [$asset $amount] (
  source = @users:$user_id
  destination = @platform:payouts:$payout_kind
)

send [$asset $fee] (
  source = @users:$user_id
  destination = @platform:fees
)

set_tx_meta("event_type", "transfer_completed")
`

// numscriptTransferFailedRoundTrip records a failed transfer as a single
// transaction with two postings: user→failed payouts then back again.
// Net balance impact is zero; the ledger keeps the audit trail.
const numscriptTransferFailedRoundTrip = `vars {
  asset $asset
  number $total_paid
  account $user_id
}

send [$asset $total_paid] (
  source = @users:$user_id allowing unbounded overdraft
  destination = @platform:payouts:failed
)

send [$asset $total_paid] (
  source = @platform:payouts:failed
  destination = @users:$user_id
)

set_tx_meta("event_type", "transfer_failed_round_trip")
`

// RecordDeposit credits a completed deposit to users:{userId}.
func (s *Service) RecordDeposit(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error) {
	if tx.Type != models.TransactionTypeDeposit {
		return nil, fmt.Errorf("expected deposit transaction, got %s", tx.Type)
	}
	if tx.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: deposit %s is %s", store.ErrNotTerminal, tx.Id, tx.Status)
	}

	method := tx.RecipientId
	if method == "" {
		method = "manual"
	}

	return s.post(ctx, tx, numscriptDepositReceived, map[string]string{
		"asset":   formanceAsset(tx.Currency),
		"amount":  toSmallestUnit(tx.Amount, tx.Currency),
		"user_id": tx.UserId,
		"method":  method,
	})
}

// RecordTransfer posts a settled send or withdrawal.
func (s *Service) RecordTransfer(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error) {
	if tx.Type != models.TransactionTypeSend && tx.Type != models.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("expected send or withdrawal transaction, got %s", tx.Type)
	}

	switch tx.Status {
	case models.StatusCompleted:
		return s.post(ctx, tx, numscriptTransferCompleted, map[string]string{
			"asset":       formanceAsset(tx.Currency),
			"amount":      toSmallestUnit(tx.Amount, tx.Currency),
			"fee":         toSmallestUnit(tx.Fee, tx.Currency),
			"user_id":     tx.UserId,
			"payout_kind": payoutKind(tx),
		})
	case models.StatusFailed:
		return s.post(ctx, tx, numscriptTransferFailedRoundTrip, map[string]string{
			"asset":      formanceAsset(tx.Currency),
			"total_paid": toSmallestUnit(tx.TotalPaid, tx.Currency),
			"user_id":    tx.UserId,
		})
	default:
		return nil, fmt.Errorf("%w: transfer %s is %s", store.ErrNotTerminal, tx.Id, tx.Status)
	}
}

func (s *Service) post(ctx context.Context, tx *models.Transaction, script string, vars map[string]string) (*models.LedgerEntry, error) {
	before, err := s.GetBalance(ctx, tx.UserId)
	if err != nil {
		return nil, err
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(tx.Id),
		Metadata:  transactionMetadata(tx),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if !tx.SettledAt.IsZero() {
		postTx.Timestamp = &tx.SettledAt
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil, fmt.Errorf("%w: transaction %s already exists", store.ErrDuplicateTransaction, tx.Id)
		}
		if isInsufficientFundError(err) {
			return nil, fmt.Errorf("%w: user %s", store.ErrInsufficientFunds, tx.UserId)
		}
		return nil, fmt.Errorf("failed to record %s transaction: %w", tx.Type, err)
	}

	impact := tx.BalanceImpact()
	zap.L().Info("Transaction recorded in Formance",
		zap.String("transaction_id", tx.Id),
		zap.String("type", tx.Type),
		zap.String("status", tx.Status),
		zap.String("ledger_amount", impact.String()))

	return &models.LedgerEntry{
		Transaction:   *tx,
		LedgerAmount:  impact,
		BalanceBefore: before,
		BalanceAfter:  before.Add(impact),
	}, nil
}

// GetTransaction looks a transaction up by its reference.
func (s *Service) GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	pageSize := int64(1)
	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:   s.ledger,
		PageSize: &pageSize,
		RequestBody: map[string]any{
			"$match": map[string]any{"reference": transactionId},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	for _, ftx := range resp.V2TransactionsCursorResponse.Cursor.Data {
		if ftx.Metadata[metaUserId] != userId {
			continue
		}
		tx, err := transactionFromMetadata(ftx.Metadata)
		if err != nil {
			return nil, err
		}
		return &tx, nil
	}
	return nil, fmt.Errorf("%w: %s", store.ErrTransactionNotFound, transactionId)
}

// GetTransactionHistory returns paginated transaction history for a user, newest first.
func (s *Service) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	pageSize := int64(limit + offset) // fetch enough to skip offset

	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:      s.ledger,
		PageSize:    &pageSize,
		RequestBody: accountFilter(userAccount(userId)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var result []models.Transaction
	skipped := 0
	for _, ftx := range resp.V2TransactionsCursorResponse.Cursor.Data {
		if ftx.Metadata[metaTransactionId] == "" {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}

		tx, err := transactionFromMetadata(ftx.Metadata)
		if err != nil {
			zap.L().Warn("Skipping ledger transaction with unreadable metadata",
				zap.String("reference", ftx.Metadata[metaTransactionId]),
				zap.Error(err))
			continue
		}
		result = append(result, tx)

		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Metadata encoding
// ---------------------------------------------------------------------------

const (
	metaTransactionId     = "transaction_id"
	metaReferenceNumber   = "reference_number"
	metaUserId            = "user_id"
	metaType              = "transaction_type"
	metaRecipientId       = "recipient_id"
	metaRecipientName     = "recipient_name"
	metaAmount            = "amount"
	metaCurrency          = "currency"
	metaConvertedAmount   = "converted_amount"
	metaRecipientCurrency = "recipient_currency"
	metaExchangeRate      = "exchange_rate"
	metaFee               = "fee"
	metaTotalPaid         = "total_paid"
	metaCategory          = "category"
	metaNote              = "note"
	metaStatus            = "status"
	metaCreatedAt         = "created_at"
	metaSettledAt         = "settled_at"
)

func transactionMetadata(tx *models.Transaction) map[string]string {
	return map[string]string{
		metaTransactionId:     tx.Id,
		metaReferenceNumber:   tx.ReferenceNumber,
		metaUserId:            tx.UserId,
		metaType:              tx.Type,
		metaRecipientId:       tx.RecipientId,
		metaRecipientName:     tx.RecipientName,
		metaAmount:            tx.Amount.String(),
		metaCurrency:          tx.Currency,
		metaConvertedAmount:   tx.ConvertedAmount.String(),
		metaRecipientCurrency: tx.RecipientCurrency,
		metaExchangeRate:      tx.ExchangeRate.String(),
		metaFee:               tx.Fee.String(),
		metaTotalPaid:         tx.TotalPaid.String(),
		metaCategory:          tx.Category,
		metaNote:              tx.Note,
		metaStatus:            tx.Status,
		metaCreatedAt:         tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		metaSettledAt:         tx.SettledAt.UTC().Format(time.RFC3339Nano),
	}
}

func transactionFromMetadata(meta map[string]string) (models.Transaction, error) {
	tx := models.Transaction{
		Id:                meta[metaTransactionId],
		ReferenceNumber:   meta[metaReferenceNumber],
		UserId:            meta[metaUserId],
		Type:              meta[metaType],
		RecipientId:       meta[metaRecipientId],
		RecipientName:     meta[metaRecipientName],
		Currency:          meta[metaCurrency],
		RecipientCurrency: meta[metaRecipientCurrency],
		Category:          meta[metaCategory],
		Note:              meta[metaNote],
		Status:            meta[metaStatus],
	}

	decimals := []struct {
		key string
		dst *decimal.Decimal
	}{
		{metaAmount, &tx.Amount},
		{metaConvertedAmount, &tx.ConvertedAmount},
		{metaExchangeRate, &tx.ExchangeRate},
		{metaFee, &tx.Fee},
		{metaTotalPaid, &tx.TotalPaid},
	}
	for _, d := range decimals {
		value, err := decimal.NewFromString(meta[d.key])
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to parse %s '%s': %w", d.key, meta[d.key], err)
		}
		*d.dst = value
	}

	times := []struct {
		key string
		dst *time.Time
	}{
		{metaCreatedAt, &tx.CreatedAt},
		{metaSettledAt, &tx.SettledAt},
	}
	for _, ts := range times {
		value, err := time.Parse(time.RFC3339Nano, meta[ts.key])
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to parse %s '%s': %w", ts.key, meta[ts.key], err)
		}
		*ts.dst = value
	}

	return tx, nil
}

// payoutKind names the clearing account a completed transfer pays into.
func payoutKind(tx *models.Transaction) string {
	switch {
	case tx.Type == models.TransactionTypeWithdrawal:
		return "withdrawals"
	case tx.RecipientCurrency == models.PeggedCurrency:
		return "peer"
	default:
		return "bank"
	}
}

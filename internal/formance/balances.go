package formance

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"remit-wallet-go/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the user's CBUSD balance from the users:{userId} account volumes.
func (s *Service) GetBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	zap.L().Debug("Getting user balance from Formance", zap.String("user_id", userId))

	vols, err := s.getAccountVolumes(ctx, userAccount(userId))
	if err != nil {
		return decimal.Zero, err
	}
	if bal := volumeBalance(vols, formanceAsset(models.PeggedCurrency)); bal != nil {
		return bigIntToDecimal(bal, models.PeggedCurrency), nil
	}
	return decimal.Zero, nil
}

// GetAllBalances returns all non-zero balances for a user.
func (s *Service) GetAllBalances(ctx context.Context, userId string) ([]models.AccountBalance, error) {
	zap.L().Debug("Getting all user balances from Formance", zap.String("user_id", userId))

	addr := userAccount(userId)
	vols, err := s.getAccountVolumes(ctx, addr)
	if err != nil {
		return nil, err
	}
	updatedAt := s.getAccountUpdatedAt(ctx, addr)
	lastTx := s.getLastTransactionReference(ctx, addr)

	var balances []models.AccountBalance
	for fAsset := range vols {
		bal := volumeBalance(vols, fAsset)
		if bal == nil || bal.Sign() == 0 {
			continue
		}
		symbol := assetSymbol(fAsset)
		balances = append(balances, models.AccountBalance{
			Id:                addr,
			UserId:            userId,
			Asset:             symbol,
			Balance:           bigIntToDecimal(bal, symbol),
			LastTransactionId: lastTx,
			UpdatedAt:         updatedAt,
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Asset < balances[j].Asset })
	return balances, nil
}

// ReconcileBalance is a no-op in Formance; balances are derived from postings.
func (s *Service) ReconcileBalance(ctx context.Context, userId string) error {
	zap.L().Debug("Reconciliation is a no-op in Formance (consistent by construction)",
		zap.String("user_id", userId))
	return nil
}

// ---------- helpers ----------

// getAccountVolumes fetches volumes for a single account. An account that
// was never used has no volumes.
func (s *Service) getAccountVolumes(ctx context.Context, address string) (map[string]shared.V2Volume, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		zap.L().Warn("Failed to get account volumes", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("failed to get account volumes: %w", err)
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// getAccountUpdatedAt returns the last updated timestamp for an account.
func (s *Service) getAccountUpdatedAt(ctx context.Context, address string) time.Time {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
	})
	if err != nil {
		return time.Now()
	}
	if t := resp.V2AccountResponse.Data.UpdatedAt; t != nil {
		return *t
	}
	if t := resp.V2AccountResponse.Data.FirstUsage; t != nil {
		return *t
	}
	return time.Now()
}

// getLastTransactionReference finds the most recent transaction touching this account.
func (s *Service) getLastTransactionReference(ctx context.Context, address string) string {
	pageSize := int64(1)
	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:      s.ledger,
		PageSize:    &pageSize,
		RequestBody: accountFilter(address),
	})
	if err != nil || len(resp.V2TransactionsCursorResponse.Cursor.Data) == 0 {
		return ""
	}
	tx := resp.V2TransactionsCursorResponse.Cursor.Data[0]
	if tx.Reference != nil {
		return *tx.Reference
	}
	return ""
}

func accountFilter(address string) map[string]any {
	return map[string]any{
		"$or": []any{
			map[string]any{"$match": map[string]any{"source": address}},
			map[string]any{"$match": map[string]any{"destination": address}},
		},
	}
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts a *big.Int in smallest-unit to a human-readable decimal.
func bigIntToDecimal(raw *big.Int, symbol string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precisionFor(symbol)))
}

// toSmallestUnit converts a decimal amount into the ledger's integer notation.
func toSmallestUnit(amount decimal.Decimal, symbol string) string {
	return amount.Shift(int32(precisionFor(symbol))).BigInt().String()
}

// assetSymbol extracts the symbol from a Formance asset like "CBUSD/6".
func assetSymbol(fAsset string) string {
	for i, c := range fAsset {
		if c == '/' {
			return fAsset[:i]
		}
	}
	return fAsset
}

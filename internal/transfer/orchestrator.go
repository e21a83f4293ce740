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

package transfer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/notify"
	"remit-wallet-go/internal/rates"
	"remit-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DepositMethods lists the accepted funding sources.
var DepositMethods = []string{"bank_transfer", "card", "mobile_money"}

// SubmitRequest is a confirmed send or withdrawal.
type SubmitRequest struct {
	UserId    string
	Type      string // send (default) or withdrawal
	Recipient models.Recipient
	Amount    decimal.Decimal
	Category  string
	Note      string
}

// Result is the terminal outcome of a transfer. Err is set when the outcome
// could not be saved; Transaction still holds the settled state.
type Result struct {
	Transaction models.Transaction
	Entry       *models.LedgerEntry
	Err         error
}

// Handle tracks one submitted transfer.
type Handle struct {
	pending models.Transaction
	done    chan Result
}

// Pending returns the transaction as it was created.
func (h *Handle) Pending() models.Transaction {
	return h.pending
}

// Done delivers exactly one Result once the transfer settles.
func (h *Handle) Done() <-chan Result {
	return h.done
}

// Wait blocks until the transfer settles or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case r := <-h.done:
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Orchestrator prices transfers, settles them after a fixed delay and
// applies the outcome to the ledger exactly once.
type Orchestrator struct {
	ledger   store.Ledger
	rates    rates.Provider
	notifier notify.Notifier
	cfg      models.TransferConfig
	clock    Clock
	random   RandomSource

	mu        sync.Mutex
	inFlight  map[string]string // userId -> transaction id
	userLocks map[string]*sync.Mutex
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithRandom(r RandomSource) Option {
	return func(o *Orchestrator) { o.random = r }
}

func NewOrchestrator(ledger store.Ledger, provider rates.Provider, notifier notify.Notifier, cfg models.TransferConfig, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		ledger:    ledger,
		rates:     provider,
		notifier:  notifier,
		cfg:       cfg,
		clock:     realClock{},
		random:    globalRandom{},
		inFlight:  make(map[string]string),
		userLocks: make(map[string]*sync.Mutex),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Quote prices a transfer at the current rates without submitting it.
func (o *Orchestrator) Quote(amount decimal.Decimal, recipientCurrency string) Breakdown {
	return ComputeBreakdown(amount, recipientCurrency, o.rates.Rates())
}

// SettlementDelay is how long a submitted transfer stays pending.
func (o *Orchestrator) SettlementDelay() time.Duration {
	return o.cfg.SettlementDelay
}

// Submit validates and prices the request, records a pending transaction
// and schedules its settlement.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*Handle, error) {
	if req.Type == "" {
		req.Type = models.TransactionTypeSend
	}
	if err := o.validate(req); err != nil {
		return nil, err
	}

	breakdown := o.Quote(req.Amount, req.Recipient.Currency)

	reference, err := NewReferenceNumber()
	if err != nil {
		return nil, fmt.Errorf("unable to generate reference number: %w", err)
	}
	tx := models.Transaction{
		Id:                uuid.New().String(),
		ReferenceNumber:   reference,
		UserId:            req.UserId,
		Type:              req.Type,
		RecipientId:       req.Recipient.Id,
		RecipientName:     req.Recipient.Name,
		Amount:            breakdown.Amount,
		Currency:          models.PeggedCurrency,
		ConvertedAmount:   breakdown.ConvertedAmount,
		RecipientCurrency: req.Recipient.Currency,
		ExchangeRate:      breakdown.ExchangeRate,
		Fee:               breakdown.Fee,
		TotalPaid:         breakdown.TotalPaid,
		Category:          req.Category,
		Note:              req.Note,
		Status:            models.StatusPending,
		CreatedAt:         o.clock.Now().UTC(),
	}

	if err := o.reserve(req.UserId, tx.Id); err != nil {
		return nil, err
	}

	balance, err := o.ledger.GetBalance(ctx, req.UserId)
	if err != nil {
		o.abandon(req.UserId)
		return nil, fmt.Errorf("unable to read balance: %w", err)
	}
	if balance.LessThan(tx.TotalPaid) {
		o.abandon(req.UserId)
		return nil, fmt.Errorf("%w: balance %s, required %s", store.ErrInsufficientFunds, balance, tx.TotalPaid)
	}

	handle := &Handle{pending: tx, done: make(chan Result, 1)}
	timer := o.clock.After(o.cfg.SettlementDelay)

	go o.settle(handle, timer)

	zap.L().Info("Transfer submitted",
		zap.String("transaction_id", tx.Id),
		zap.String("reference", tx.ReferenceNumber),
		zap.String("user_id", tx.UserId),
		zap.String("type", tx.Type),
		zap.String("recipient_currency", tx.RecipientCurrency),
		zap.String("amount", tx.Amount.String()),
		zap.String("fee", tx.Fee.String()),
		zap.String("total_paid", tx.TotalPaid.String()))

	return handle, nil
}

// Withdraw submits a withdrawal to one of the user's bank payout recipients.
func (o *Orchestrator) Withdraw(ctx context.Context, req SubmitRequest) (*Handle, error) {
	req.Type = models.TransactionTypeWithdrawal
	return o.Submit(ctx, req)
}

// Deposit credits the user's balance immediately.
func (o *Orchestrator) Deposit(ctx context.Context, userId string, amount decimal.Decimal, method string) (*models.LedgerEntry, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if method == "" {
		method = DepositMethods[0]
	}
	if !slices.Contains(DepositMethods, method) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepositMethod, method)
	}

	if err := o.track(); err != nil {
		return nil, err
	}
	defer o.wg.Done()

	reference, err := NewReferenceNumber()
	if err != nil {
		return nil, fmt.Errorf("unable to generate reference number: %w", err)
	}
	now := o.clock.Now().UTC()
	tx := &models.Transaction{
		Id:                uuid.New().String(),
		ReferenceNumber:   reference,
		UserId:            userId,
		Type:              models.TransactionTypeDeposit,
		RecipientId:       method,
		RecipientName:     depositLabel(method),
		Amount:            amount,
		Currency:          models.PeggedCurrency,
		ConvertedAmount:   amount,
		RecipientCurrency: models.PeggedCurrency,
		ExchangeRate:      decimal.NewFromInt(1),
		Fee:               decimal.Zero,
		TotalPaid:         amount,
		Status:            models.StatusCompleted,
		CreatedAt:         now,
		SettledAt:         now,
	}

	lock := o.userLock(userId)
	lock.Lock()
	entry, err := o.ledger.RecordDeposit(ctx, tx)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	o.publish(*tx)
	return entry, nil
}

// Close cancels every pending settlement and waits for in-flight work.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
	zap.L().Info("Transfer orchestrator stopped")
}

// settle waits out the delay, draws the outcome and persists it.
func (o *Orchestrator) settle(handle *Handle, timer <-chan time.Time) {
	defer o.wg.Done()

	tx := handle.pending
	select {
	case <-timer:
	case <-o.ctx.Done():
		o.release(tx.UserId)
		zap.L().Warn("Settlement cancelled", zap.String("transaction_id", tx.Id))
		handle.done <- Result{Transaction: tx, Err: ErrSettlementCancelled}
		return
	}

	threshold := o.cfg.BankSuccessRate
	if tx.RecipientCurrency == models.PeggedCurrency {
		threshold = o.cfg.PeerSuccessRate
	}
	tx.Status = models.StatusFailed
	if o.random.Float64() < threshold {
		tx.Status = models.StatusCompleted
	}
	tx.SettledAt = o.clock.Now().UTC()

	lock := o.userLock(tx.UserId)
	lock.Lock()
	entry, err := o.persist(&tx)
	if errors.Is(err, store.ErrInsufficientFunds) && tx.Status == models.StatusCompleted {
		zap.L().Warn("Balance no longer covers transfer; recording as failed",
			zap.String("transaction_id", tx.Id))
		tx.Status = models.StatusFailed
		entry, err = o.persist(&tx)
	}
	lock.Unlock()

	if err != nil {
		zap.L().Error("Settled transaction could not be saved",
			zap.String("transaction_id", tx.Id),
			zap.String("status", tx.Status),
			zap.Error(err))
		err = fmt.Errorf("changes not saved: %w", err)
	} else {
		zap.L().Info("Transfer settled",
			zap.String("transaction_id", tx.Id),
			zap.String("user_id", tx.UserId),
			zap.String("status", tx.Status))
	}

	o.release(tx.UserId)
	handle.done <- Result{Transaction: tx, Entry: entry, Err: err}
	o.publish(tx)
}

// persist writes a terminal transfer, retrying transient failures. A
// duplicate on retry means an earlier attempt was committed.
func (o *Orchestrator) persist(tx *models.Transaction) (*models.LedgerEntry, error) {
	attempts := 1 + max(o.cfg.PersistenceRetries, 0)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var entry *models.LedgerEntry
		entry, err = o.ledger.RecordTransfer(context.Background(), tx)
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, store.ErrDuplicateTransaction) && attempt > 1 {
			return nil, nil
		}
		if errors.Is(err, store.ErrInsufficientFunds) || errors.Is(err, store.ErrNotTerminal) {
			return nil, err
		}
		zap.L().Warn("Failed to save settled transaction",
			zap.String("transaction_id", tx.Id),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, err
}

// publish must be called by tracked work so the WaitGroup counter is
// already positive.
func (o *Orchestrator) publish(tx models.Transaction) {
	if o.notifier == nil {
		return
	}
	event := notify.NewEvent(tx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := o.notifier.Notify(ctx, event); err != nil {
			zap.L().Warn("Failed to publish settlement event",
				zap.String("transaction_id", event.TransactionId),
				zap.Error(err))
		}
	}()
}

// reserve claims the user's submission slot and registers the settlement
// with the WaitGroup in the same critical section as the closed check.
func (o *Orchestrator) reserve(userId, txId string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if existing, ok := o.inFlight[userId]; ok {
		return fmt.Errorf("%w: %s", ErrTransferInFlight, existing)
	}
	o.inFlight[userId] = txId
	o.wg.Add(1)
	return nil
}

// abandon undoes reserve for a submission that never started settling.
func (o *Orchestrator) abandon(userId string) {
	o.release(userId)
	o.wg.Done()
}

// track registers work that Close must wait for.
func (o *Orchestrator) track() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	o.wg.Add(1)
	return nil
}

func (o *Orchestrator) release(userId string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, userId)
}

// InFlight reports whether the user has a transfer awaiting settlement.
func (o *Orchestrator) InFlight(userId string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inFlight[userId]
	return ok
}

func (o *Orchestrator) userLock(userId string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.userLocks[userId]
	if !ok {
		lock = &sync.Mutex{}
		o.userLocks[userId] = lock
	}
	return lock
}

func (o *Orchestrator) validate(req SubmitRequest) error {
	if err := validateAmount(req.Amount); err != nil {
		return err
	}

	r := req.Recipient
	switch {
	case r.Type == models.RecipientTypePeer && r.Currency != models.PeggedCurrency,
		r.Type == models.RecipientTypeBank && r.Currency == models.PeggedCurrency,
		r.Type != models.RecipientTypePeer && r.Type != models.RecipientTypeBank:
		return fmt.Errorf("%w: %s recipient in %s", ErrInvalidRecipient, r.Type, r.Currency)
	case req.Type == models.TransactionTypeWithdrawal && r.Type != models.RecipientTypeBank:
		return fmt.Errorf("%w: withdrawals go to a bank account", ErrInvalidRecipient)
	case req.Type != models.TransactionTypeSend && req.Type != models.TransactionTypeWithdrawal:
		return fmt.Errorf("%w: unsupported transfer type %s", ErrInvalidRecipient, req.Type)
	}

	if info, ok := o.rates.Currency(r.Currency); ok && req.Amount.LessThan(info.MinAmount) {
		return fmt.Errorf("%w: minimum for %s is %s", ErrBelowMinimum, r.Currency, info.MinAmount)
	}
	if n := utf8.RuneCountInString(req.Note); o.cfg.NoteMaxLength > 0 && n > o.cfg.NoteMaxLength {
		return fmt.Errorf("%w: %d characters, maximum %d", ErrNoteTooLong, n, o.cfg.NoteMaxLength)
	}
	if req.Category != "" && !slices.Contains(models.TransactionCategories, req.Category) {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, req.Category)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}

func depositLabel(method string) string {
	switch method {
	case "card":
		return "Card deposit"
	case "mobile_money":
		return "Mobile money deposit"
	default:
		return "Bank transfer deposit"
	}
}

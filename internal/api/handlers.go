package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"remit-wallet-go/internal/registry"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Handler adapts HTTP requests to the wallet service
type Handler struct {
	service *WalletService
}

func NewHandler(service *WalletService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetRates(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.GetRates())
}

func (h *Handler) handleGetRate(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.GetRate(chi.URLParam(r, "code"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		respondWithError(w, r, fmt.Errorf("%w: amount must be a number", ErrInvalidRequest))
		return
	}
	breakdown, err := h.service.Quote(amount, chi.URLParam(r, "code"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")

	balance, err := h.service.GetBalance(r.Context(), userId)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	balances, err := h.service.GetUserBalances(r.Context(), userId)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"user_id":  userId,
		"balance":  balance,
		"balances": balances,
	})
}

func (h *Handler) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	transactions, err := h.service.GetTransactionHistory(r.Context(), chi.URLParam(r, "userId"), limit, offset)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *Handler) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.GetReceipt(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	summary, err := h.service.GetAnalytics(r.Context(), chi.URLParam(r, "userId"), from, to)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.service.ListRecipients(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, recipients)
}

func (h *Handler) handleAddRecipient(w http.ResponseWriter, r *http.Request) {
	var input registry.RecipientInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, r, err)
		return
	}

	recipient, err := h.service.AddRecipient(r.Context(), chi.URLParam(r, "userId"), input)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, recipient)
}

func (h *Handler) handleRemoveRecipient(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveRecipient(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "recipientId"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	result, _, err := h.service.SendMoney(r.Context(), chi.URLParam(r, "userId"), req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, result)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientId string          `json:"recipient_id"`
		Amount      decimal.Decimal `json:"amount"`
		Note        string          `json:"note,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	result, _, err := h.service.ProcessWithdrawal(r.Context(), chi.URLParam(r, "userId"), req.RecipientId, req.Amount, req.Note)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, result)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	result, err := h.service.ProcessDeposit(r.Context(), chi.URLParam(r, "userId"), req.Amount, req.Method)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidRequest, name)
	}
	return value, nil
}

// queryTime accepts a date (2006-01-02) or an RFC 3339 timestamp.
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date or RFC 3339 timestamp", ErrInvalidRequest, name)
	}
	return t, nil
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter registers the wallet routes
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)

	r.Route("/rates", func(r chi.Router) {
		r.Get("/", h.handleGetRates)
		r.Get("/{code}", h.handleGetRate)
		r.Get("/{code}/quote", h.handleQuote)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleCreateUser)

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", h.handleGetUser)
			r.Get("/balance", h.handleGetBalance)
			r.Get("/transactions", h.handleGetTransactions)
			r.Get("/transactions/{transactionId}", h.handleGetReceipt)
			r.Get("/analytics", h.handleGetAnalytics)

			r.Get("/recipients", h.handleListRecipients)
			r.Post("/recipients", h.handleAddRecipient)
			r.Delete("/recipients/{recipientId}", h.handleRemoveRecipient)

			r.Post("/transfers", h.handleSend)
			r.Post("/withdrawals", h.handleWithdraw)
			r.Post("/deposits", h.handleDeposit)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

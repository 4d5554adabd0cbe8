package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomadpool/internal/pool/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/httputil"
	"nomadpool/pkg/platform/middleware/admin"
	"nomadpool/pkg/platform/middleware/principal"
	"nomadpool/pkg/requestcontext"
)

// Service defines the pool operations the HTTP layer needs.
type Service interface {
	Contribute(ctx context.Context, from domain.Principal, amount domain.Amount) error
	Withdraw(ctx context.Context, amount domain.Amount) error
	Stats(ctx context.Context) models.Stats
}

type Handler struct {
	pool       Service
	validator  *principal.Validator
	adminToken string
	logger     *slog.Logger
}

func New(pool Service, validator *principal.Validator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		pool:       pool,
		validator:  validator,
		adminToken: adminToken,
		logger:     logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/pool/stats", h.handleStats)
	r.Group(func(r chi.Router) {
		r.Use(principal.Require(h.validator, h.logger))
		r.Post("/pool/contributions", h.handleContribute)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/pool/withdrawals", h.handleWithdraw)
	})
}

type amountRequest struct {
	Amount domain.Amount `json:"amount"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.pool.Stats(r.Context()))
}

func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from := requestcontext.Principal(ctx)

	req, err := httputil.Decode[amountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.pool.Contribute(ctx, from, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, h.pool.Stats(ctx))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[amountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.pool.Withdraw(ctx, req.Amount); err != nil {
		h.logger.WarnContext(ctx, "withdrawal rejected",
			"request_id", requestcontext.RequestID(ctx),
			"amount", req.Amount,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, h.pool.Stats(ctx))
}

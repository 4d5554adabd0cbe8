package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nomadpool/internal/claims/models"
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
	"nomadpool/pkg/platform/httputil"
	"nomadpool/pkg/platform/middleware/admin"
	"nomadpool/pkg/platform/middleware/principal"
	"nomadpool/pkg/requestcontext"
)

// Service defines the claim operations the HTTP layer needs.
type Service interface {
	Submit(ctx context.Context, claimant domain.Principal, policyID domain.PolicyID, amount domain.Amount, description, evidenceRef string) (models.Claim, error)
	Adjudicate(ctx context.Context, id domain.ClaimID, approve bool) (models.Claim, error)
	Get(ctx context.Context, id domain.ClaimID) (models.Claim, error)
	ClaimsOf(ctx context.Context, claimant domain.Principal) ([]models.Claim, error)
}

type Handler struct {
	claims     Service
	validator  *principal.Validator
	adminToken string
	logger     *slog.Logger
}

func New(claims Service, validator *principal.Validator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		claims:     claims,
		validator:  validator,
		adminToken: adminToken,
		logger:     logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(principal.Require(h.validator, h.logger))
		r.Post("/claims", h.handleSubmit)
		r.Get("/claims", h.handleList)
		r.Get("/claims/{id}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/claims/{id}/decision", h.handleDecision)
	})
}

type submitRequest struct {
	PolicyID    domain.PolicyID `json:"policy_id"`
	Amount      domain.Amount   `json:"amount"`
	Description string          `json:"description"`
	EvidenceRef string          `json:"evidence_ref"`
}

type decisionRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimant := requestcontext.Principal(ctx)

	req, err := httputil.Decode[submitRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.claims.Submit(ctx, claimant, req.PolicyID, req.Amount, req.Description, req.EvidenceRef)
	if err != nil {
		h.logger.WarnContext(ctx, "claim rejected",
			"request_id", requestcontext.RequestID(ctx),
			"claimant", claimant,
			"policy_id", req.PolicyID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := h.claims.ClaimsOf(ctx, requestcontext.Principal(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claims)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	claim, err := h.claims.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[decisionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.claims.Adjudicate(ctx, id, req.Approve)
	if err != nil {
		h.logger.WarnContext(ctx, "adjudication failed",
			"request_id", requestcontext.RequestID(ctx),
			"claim_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func claimID(r *http.Request) (domain.ClaimID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid claim id")
	}
	return domain.ClaimID(id), nil
}

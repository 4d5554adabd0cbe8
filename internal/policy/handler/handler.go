package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nomadpool/internal/policy/models"
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
	"nomadpool/pkg/platform/httputil"
	"nomadpool/pkg/platform/middleware/admin"
	"nomadpool/pkg/platform/middleware/principal"
	"nomadpool/pkg/requestcontext"
)

// Service defines the policy operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, owner domain.Principal, location domain.LocationKey, coverage domain.Amount, durationDays int, payment domain.Amount) (models.Policy, error)
	Relocate(ctx context.Context, owner domain.Principal, id domain.PolicyID, location domain.LocationKey, payment domain.Amount) (models.Policy, domain.Amount, error)
	Cancel(ctx context.Context, actor domain.Principal, isAdmin bool, id domain.PolicyID) (models.Policy, error)
	Get(ctx context.Context, id domain.PolicyID) (models.Policy, error)
	PoliciesOf(ctx context.Context, owner domain.Principal) ([]models.Policy, error)
}

type Handler struct {
	policies   Service
	validator  *principal.Validator
	adminToken string
	logger     *slog.Logger
}

func New(policies Service, validator *principal.Validator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		policies:   policies,
		validator:  validator,
		adminToken: adminToken,
		logger:     logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(principal.Require(h.validator, h.logger))
		r.Post("/policies", h.handleCreate)
		r.Get("/policies", h.handleList)
		r.Get("/policies/{id}", h.handleGet)
		r.Post("/policies/{id}/relocate", h.handleRelocate)
		r.Post("/policies/{id}/cancel", h.handleCancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/policies/{id}/cancel", h.handleAdminCancel)
	})
}

type createRequest struct {
	Location     string        `json:"location"`
	Coverage     domain.Amount `json:"coverage"`
	DurationDays int           `json:"duration_days"`
	Payment      domain.Amount `json:"payment"`
}

type relocateRequest struct {
	Location string        `json:"location"`
	Payment  domain.Amount `json:"payment"`
}

type relocateResponse struct {
	Policy            models.Policy `json:"policy"`
	PremiumAdjustment domain.Amount `json:"premium_adjustment"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Principal(ctx)

	req, err := httputil.Decode[createRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	policy, err := h.policies.Create(ctx, owner, domain.LocationKey(req.Location), req.Coverage, req.DurationDays, req.Payment)
	if err != nil {
		h.logger.WarnContext(ctx, "policy creation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, policy)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policies, err := h.policies.PoliciesOf(ctx, requestcontext.Principal(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := policyID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	policy, err := h.policies.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleRelocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Principal(ctx)

	id, err := policyID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[relocateRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	policy, adjustment, err := h.policies.Relocate(ctx, owner, id, domain.LocationKey(req.Location), req.Payment)
	if err != nil {
		h.logger.WarnContext(ctx, "relocation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"policy_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, relocateResponse{Policy: policy, PremiumAdjustment: adjustment})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, false)
}

func (h *Handler) handleAdminCancel(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, true)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	ctx := r.Context()

	id, err := policyID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	policy, err := h.policies.Cancel(ctx, requestcontext.Principal(ctx), isAdmin, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func policyID(r *http.Request) (domain.PolicyID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid policy id")
	}
	return domain.PolicyID(id), nil
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/httputil"
	"nomadpool/pkg/platform/middleware/admin"
	"nomadpool/pkg/requestcontext"
)

// Service defines the location registry operations the HTTP layer needs.
type Service interface {
	Get(ctx context.Context, key domain.LocationKey) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Upsert(ctx context.Context, key domain.LocationKey, riskScore int, maxCoverage, averageClaim domain.Amount, active bool, note string) (*models.Profile, error)
}

type Handler struct {
	registry   Service
	adminToken string
	logger     *slog.Logger
}

func New(registry Service, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, adminToken: adminToken, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/locations", h.handleList)
	r.Get("/locations/{key}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Put("/admin/locations/{key}", h.handleUpsert)
	})
}

type upsertRequest struct {
	RiskScore    int           `json:"risk_score"`
	MaxCoverage  domain.Amount `json:"max_coverage"`
	AverageClaim domain.Amount `json:"average_claim"`
	Active       bool          `json:"active"`
	RiskNote     string        `json:"risk_note"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.registry.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.registry.Get(r.Context(), domain.LocationKey(chi.URLParam(r, "key")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := domain.LocationKey(chi.URLParam(r, "key"))

	req, err := httputil.Decode[upsertRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.registry.Upsert(ctx, key, req.RiskScore, req.MaxCoverage, req.AverageClaim, req.Active, req.RiskNote)
	if err != nil {
		h.logger.WarnContext(ctx, "location upsert rejected",
			"request_id", requestcontext.RequestID(ctx),
			"location", key,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

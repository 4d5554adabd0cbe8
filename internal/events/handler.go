package events

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomadpool/pkg/platform/httputil"
	"nomadpool/pkg/platform/middleware/admin"
)

// Handler exposes the recorded event feed to operators.
type Handler struct {
	publisher  *Publisher
	adminToken string
	logger     *slog.Logger
}

func NewHandler(publisher *Publisher, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{publisher: publisher, adminToken: adminToken, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/events", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	recorded, err := h.publisher.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recorded)
}

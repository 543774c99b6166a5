package resources

import (
	"net/http"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/response"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	validator *validator.Validator
}

func NewHandler(validator *validator.Validator) *Handler {
	return &Handler{validator: validator}
}

// RegisterRoutes registers the resource browser route
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/resources", h.ListResources)
}

// ListResources handles GET /resources?type=video,cbt&q=anxiety
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListResources")

	types, err := h.validator.ParseResourceTypes(r.URL.Query().Get("type"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, catalog.Resources(catalog.ResourceFilter{
		Types: types,
		Query: r.URL.Query().Get("q"),
	}))
}

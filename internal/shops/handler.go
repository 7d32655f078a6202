package shops

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos/internal/platform/httpx"
)

// ShopRequest is the create/update payload.
type ShopRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=32"`
	IsActive bool   `json:"is_active"`
}

// Handler wires HTTP endpoints for the shops module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs shops handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers shop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/shops", h.list)
	r.Post("/shops", h.create)
	r.Get("/shops/{shopID}", h.get)
	r.Put("/shops/{shopID}", h.update)
	r.Delete("/shops/{shopID}", h.deactivate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list shops", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shops": shops})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ShopRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	shop, err := h.service.Create(r.Context(), Shop{Name: req.Name, Location: req.Location, Phone: req.Phone})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shop)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	shop, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	var req ShopRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	err := h.service.Update(r.Context(), id, Shop{
		Name: req.Name, Location: req.Location, Phone: req.Phone, IsActive: req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	shop, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrShopNotFound) {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, err.Error())
		return
	}
	h.logger.Error("shops request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

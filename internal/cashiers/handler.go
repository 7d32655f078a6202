package cashiers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos/internal/platform/httpx"
)

// CreateCashierRequest is the creation payload.
type CreateCashierRequest struct {
	ShopID int64  `json:"shop_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=100"`
	Phone  string `json:"phone" validate:"max=32"`
	PIN    string `json:"pin" validate:"required,min=4,max=12,numeric"`
}

// UpdateCashierRequest is the edit payload.
type UpdateCashierRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"max=32"`
	IsActive bool   `json:"is_active"`
}

// VerifyPINRequest checks a cashier's PIN at the sale boundary.
type VerifyPINRequest struct {
	PIN string `json:"pin" validate:"required,min=4,max=12"`
}

// Handler wires HTTP endpoints for the cashiers module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs cashiers handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cashier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/shops/{shopID}/cashiers", h.list)
	r.Post("/cashiers", h.create)
	r.Get("/cashiers/{id}", h.get)
	r.Put("/cashiers/{id}", h.update)
	r.Delete("/cashiers/{id}", h.deactivate)
	r.Post("/cashiers/{id}/verify-pin", h.verifyPIN)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	shopID, _ := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	cashiers, err := h.service.List(r.Context(), shopID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cashiers": cashiers})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCashierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	cashier, err := h.service.Create(r.Context(), Cashier{
		ShopID: req.ShopID, Name: req.Name, Phone: req.Phone,
	}, req.PIN)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cashier)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	cashier, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cashier)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req UpdateCashierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	err := h.service.Update(r.Context(), id, Cashier{
		Name: req.Name, Phone: req.Phone, IsActive: req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	cashier, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cashier)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) verifyPIN(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req VerifyPINRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	cashier, err := h.service.VerifyPIN(r.Context(), id, req.PIN)
	if err != nil {
		if errors.Is(err, ErrInvalidPIN) {
			httpx.Error(w, http.StatusUnauthorized, "INVALID_PIN", "pin verification failed")
			return
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cashier)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrCashierNotFound) {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, err.Error())
		return
	}
	h.logger.Error("cashiers request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos/internal/platform/httpx"
)

// CreateExpenseRequest is the creation payload.
type CreateExpenseRequest struct {
	ShopID      int64      `json:"shop_id" validate:"required,gt=0"`
	Category    string     `json:"category" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	ActorName   string     `json:"actor_name" validate:"max=100"`
	IncurredAt  *time.Time `json:"incurred_at,omitempty"`
}

// Handler wires HTTP endpoints for the expenses module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs expenses handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Post("/expenses", h.create)
	r.Get("/expenses/{id}", h.get)
	r.Delete("/expenses/{id}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Category: q.Get("category"), Page: 1, Limit: 50}
	if shopStr := q.Get("shop_id"); shopStr != "" {
		if id, err := strconv.ParseInt(shopStr, 10, 64); err == nil {
			filter.ShopID = &id
		}
	}
	if fromStr := q.Get("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			filter.From = from
		}
	}
	if toStr := q.Get("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			filter.To = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": items, "total": total})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	expense := Expense{
		ShopID:      req.ShopID,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		ActorName:   req.ActorName,
	}
	if req.IncurredAt != nil {
		expense.IncurredAt = *req.IncurredAt
	}
	created, err := h.service.Create(r.Context(), expense)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrExpenseNotFound) {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, err.Error())
		return
	}
	h.logger.Error("expenses request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

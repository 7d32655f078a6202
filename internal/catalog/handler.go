package catalog

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

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{id}", h.get)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.deactivate)
	r.Post("/products/{id}/restock", h.restock)
	r.Get("/products/{id}/movements", h.movements)
	r.Get("/shops/{shopID}/low-stock", h.lowStock)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		LowStock: q.Get("low_stock") == "true",
		Page:     1,
		Limit:    50,
	}
	if shopStr := q.Get("shop_id"); shopStr != "" {
		if id, err := strconv.ParseInt(shopStr, 10, 64); err == nil {
			filter.ShopID = &id
		}
	}
	if activeStr := q.Get("is_active"); activeStr != "" {
		active := activeStr == "true"
		filter.IsActive = &active
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}

	products, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{
		Products: products, Total: total, Page: filter.Page, Limit: filter.Limit,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), Product{
		ShopID:          req.ShopID,
		Name:            req.Name,
		Category:        req.Category,
		Barcode:         req.Barcode,
		BuyingPrice:     req.BuyingPrice,
		MinSellingPrice: req.MinSellingPrice,
		CurrentStock:    req.InitialStock,
		MinStockLevel:   req.MinStockLevel,
	})
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(r, "id")
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(r, "id")
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	err := h.service.Update(r.Context(), id, Product{
		Name:            req.Name,
		Category:        req.Category,
		Barcode:         req.Barcode,
		BuyingPrice:     req.BuyingPrice,
		MinSellingPrice: req.MinSellingPrice,
		MinStockLevel:   req.MinStockLevel,
		IsActive:        req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(r, "id")
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(r, "id")
	var req RestockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	product, err := h.service.Restock(r.Context(), RestockInput{
		ProductID: id,
		Quantity:  req.Quantity,
		Type:      MovementType(req.Type),
		Reference: req.Reference,
		ActorID:   req.ActorID,
		ActorName: req.ActorName,
		Note:      req.Note,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(r, "id")
	q := r.URL.Query()
	filter := HistoryFilter{ProductID: id, Type: MovementType(q.Get("type"))}
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
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	movements, err := h.service.StockHistory(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	shopID := h.pathID(r, "shopID")
	products, err := h.service.LowStock(r.Context(), shopID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) pathID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeProductNotFound, err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrNegativeStock):
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

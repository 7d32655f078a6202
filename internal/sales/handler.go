package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos/internal/observability"
	"github.com/dukapos/dukapos/internal/platform/httpx"
	"github.com/dukapos/dukapos/internal/shared"
)

// Handler wires HTTP endpoints for the sales module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler constructs sales handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validate: validator.New()}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}

	result, err := h.service.ProcessSale(r.Context(), req.toCart())
	if err != nil {
		h.respondSaleError(w, err)
		return
	}
	h.metrics.RecordSale("committed")
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) respondSaleError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var notFound *ProductNotFoundError
	var stock *InsufficientStockError
	switch {
	case errors.As(err, &validation):
		h.metrics.RecordSale("validation_failed")
		httpx.ValidationErrors(w, validation.Problems)
	case errors.As(err, &notFound):
		h.metrics.RecordSale("product_not_found")
		httpx.ErrorWithDetails(w, http.StatusNotFound, httpx.CodeProductNotFound,
			notFound.Error(), map[string]any{"product_id": notFound.ProductID})
	case errors.As(err, &stock):
		h.metrics.RecordSale("insufficient_stock")
		httpx.ErrorWithDetails(w, http.StatusBadRequest, httpx.CodeInsufficientStock,
			stock.Error(), map[string]any{
				"product_id":   stock.ProductID,
				"product_name": stock.ProductName,
				"available":    stock.Available,
				"requested":    stock.Requested,
			})
	case errors.Is(err, shared.ErrIdempotencyConflict):
		h.metrics.RecordSale("duplicate")
		httpx.Error(w, http.StatusConflict, httpx.CodeDuplicate, err.Error())
	default:
		h.metrics.RecordSale("persistence_failed")
		h.logger.Error("process sale", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeTransactionFailed,
			"sale could not be committed; nothing was recorded, retry the whole sale")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TransactionFilter{Page: 1, Limit: 50}
	if shopStr := q.Get("shop_id"); shopStr != "" {
		if id, err := strconv.ParseInt(shopStr, 10, 64); err == nil {
			filter.ShopID = &id
		}
	}
	if cashierStr := q.Get("cashier_id"); cashierStr != "" {
		if id, err := strconv.ParseInt(cashierStr, 10, 64); err == nil {
			filter.CashierID = &id
		}
	}
	if statusStr := q.Get("status"); statusStr != "" {
		status := Status(statusStr)
		filter.Status = &status
	}
	if methodStr := q.Get("payment_method"); methodStr != "" {
		method := PaymentMethod(methodStr)
		filter.PaymentMethod = &method
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

	transactions, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{
		Transactions: transactions, Total: total, Page: filter.Page, Limit: filter.Limit,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	transaction, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondReadError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transaction)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondReadError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transaction)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}

	transaction, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status), SaleContext{
		CashierID:   req.CashierID,
		CashierName: req.CashierName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatusTransition):
			httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		default:
			h.respondReadError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, transaction)
}

func (h *Handler) respondReadError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrTransactionNotFound) {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, err.Error())
		return
	}
	h.logger.Error("sales request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

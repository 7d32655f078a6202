package credits

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos/internal/platform/httpx"
)

// CreateAccountRequest is the account creation payload.
type CreateAccountRequest struct {
	ShopID       int64   `json:"shop_id" validate:"required,gt=0"`
	CustomerName string  `json:"customer_name" validate:"required,max=200"`
	Phone        string  `json:"phone" validate:"max=32"`
	CreditLimit  float64 `json:"credit_limit" validate:"gte=0"`
}

// EntryRequest books a charge or payment.
type EntryRequest struct {
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	TransactionNumber string  `json:"transaction_number" validate:"max=64"`
	Note              string  `json:"note" validate:"max=500"`
}

// Handler wires HTTP endpoints for the credits module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs credits handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers credit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/shops/{shopID}/credit-accounts", h.list)
	r.Post("/credit-accounts", h.create)
	r.Get("/credit-accounts/{id}", h.get)
	r.Post("/credit-accounts/{id}/charges", h.charge)
	r.Post("/credit-accounts/{id}/payments", h.payment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	shopID, _ := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	accounts, err := h.service.ListAccounts(r.Context(), shopID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), Account{
		ShopID:       req.ShopID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		CreditLimit:  req.CreditLimit,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	account, entries, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account": account, "entries": entries})
}

func (h *Handler) charge(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req EntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	account, err := h.service.RecordCharge(r.Context(), id, req.Amount, req.TransactionNumber, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req EntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
		return
	}
	account, err := h.service.RecordPayment(r.Context(), id, req.Amount, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, err.Error())
	case errors.Is(err, ErrCreditLimitExceeded), errors.Is(err, ErrInvalidAmount):
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, err.Error())
	default:
		h.logger.Error("credits request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

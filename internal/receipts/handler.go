package receipts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dukapos/dukapos/internal/platform/httpx"
	"github.com/dukapos/dukapos/internal/sales"
)

// TransactionGetter is the slice of the sales service the receipt endpoint needs.
type TransactionGetter interface {
	Get(ctx context.Context, id int64) (sales.Transaction, error)
}

// Mailer queues a rendered receipt for delivery. Nil means email is disabled.
type Mailer interface {
	SendReceipt(ctx context.Context, to, transactionNumber, body string) error
}

type Handler struct {
	txs      TransactionGetter
	renderer *Renderer
	mailer   Mailer
	logger   *slog.Logger
}

func NewHandler(txs TransactionGetter, renderer *Renderer, mailer Mailer, logger *slog.Logger) *Handler {
	return &Handler{txs: txs, renderer: renderer, mailer: mailer, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales/{id}/receipt", h.receipt)
	r.Post("/sales/{id}/receipt/email", h.email)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid transaction id")
		return
	}
	tx, err := h.txs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sales.ErrTransactionNotFound) {
			httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "transaction not found")
			return
		}
		h.logger.Error("receipt lookup failed", "id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "could not load transaction")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.renderer.Render(tx)))
}

type emailRequest struct {
	To string `json:"to"`
}

func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		httpx.Error(w, http.StatusServiceUnavailable, httpx.CodeInternal, "receipt email is not configured")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid transaction id")
		return
	}
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.To == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "recipient address is required")
		return
	}
	tx, err := h.txs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sales.ErrTransactionNotFound) {
			httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "transaction not found")
			return
		}
		h.logger.Error("receipt lookup failed", "id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "could not load transaction")
		return
	}
	if err := h.mailer.SendReceipt(r.Context(), req.To, tx.Number, h.renderer.Render(tx)); err != nil {
		h.logger.Error("receipt enqueue failed", "id", id, "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "could not queue receipt email")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued", "to": req.To})
}

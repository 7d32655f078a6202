package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukapos/dukapos/internal/platform/httpx"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/shops/{shopID}/reports/daily", h.daily)
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "invalid shop id")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	summary, err := h.svc.Daily(r.Context(), shopID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "date must be YYYY-MM-DD")
			return
		}
		h.logger.Error("daily report failed", "shop_id", shopID, "date", date, "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "could not build report")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

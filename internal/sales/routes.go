package sales

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.create)
	r.Get("/sales", h.list)
	r.Get("/sales/{id}", h.get)
	r.Get("/sales/number/{number}", h.getByNumber)
	r.Post("/sales/{id}/status", h.updateStatus)
}

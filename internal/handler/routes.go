package handler

import "github.com/dukerupert/skuengine/internal/router"

// RegisterSkuRoutes mounts the SKU endpoints on r.
func RegisterSkuRoutes(r *router.Router, h *SkuHandler) {
	r.Get("/skus", h.List)
	r.Get("/skus/{id}", h.Get)
	r.Post("/skus", h.Add)
	r.Delete("/products/{id}/skus", h.Delete)
	r.Post("/products/{id}/skus/generate", h.Generate)
	r.Get("/products/{id}/selection", h.Selection)
}

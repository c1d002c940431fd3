package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.ListPage)
	mux.HandleFunc("GET /recipes/{id}", h.DetailPage)

	// Form actions redirect back to a page when done.
	mux.HandleFunc("POST /recipes", requireCSRF(h.CreateRecipe))
	mux.HandleFunc("POST /recipes/{id}", requireCSRF(h.UpdateRecipe))
	mux.HandleFunc("POST /recipes/{id}/delete", requireCSRF(h.DeleteRecipe))
	mux.HandleFunc("POST /refresh", requireCSRF(h.Refresh))
	mux.HandleFunc("POST /messages/clear", requireCSRF(h.ClearMessages))
}

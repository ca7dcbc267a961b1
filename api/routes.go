package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpupo63/blog-admin-backend/authz"
)

// setupAdminRoutes sets up the blog admin routes, every one behind a token and a permission
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware, csrfProtect func(http.Handler) http.Handler) {
	r.Route("/admin/blogs", func(r chi.Router) {
		r.Use(auth.authenticate)
		r.Use(csrfProtect)

		r.With(auth.authorize(authz.BlogsIndex)).Get("/", handlers.blogHandler.index())
		r.With(auth.authorize(authz.BlogsCreate)).Get("/create", handlers.blogHandler.create())
		r.With(auth.authorize(authz.BlogsCreate)).Post("/", handlers.blogHandler.store())

		r.Route("/{blogID}", func(r chi.Router) {
			r.With(auth.authorize(authz.BlogsShow)).Get("/", handlers.blogHandler.show())
			r.With(auth.authorize(authz.BlogsEdit)).Get("/edit", handlers.blogHandler.edit())
			r.With(auth.authorize(authz.BlogsEdit)).Put("/", handlers.blogHandler.update())
			r.With(auth.authorize(authz.BlogsEdit)).Patch("/", handlers.blogHandler.update())
			r.With(auth.authorize(authz.BlogsDestroy)).Delete("/", handlers.blogHandler.destroy())
		})
	})
}

// setupPublicRoutes sets up the routes that need no token
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, storage http.Handler) {
	r.Get("/health", handlers.healthHandler.health())
	r.Get("/search/blogs", handlers.searchHandler.searchBlogs())
	r.Handle("/metrics", promhttp.Handler())

	if storage != nil {
		r.Handle("/storage/*", storage)
	}
}

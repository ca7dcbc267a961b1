package api

import (
	"time"

	"github.com/rpupo63/blog-admin-backend/authz"
	"github.com/rpupo63/blog-admin-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(service *services.BlogService, policy authz.Policy, flashes flashStore, opts blogHandlerOptions, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		blogHandler:   newBlogHandler(service, policy, flashes, opts),
		searchHandler: newSearchHandler(service),
		healthHandler: newHealthHandler(startupTime),
	}
}

package api

import (
	"github.com/rpupo63/blog-admin-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler   blogHandler
	searchHandler searchHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string              `json:"error" example:"Internal Server Error"`
	Status  string              `json:"status" example:"error"`
	Field   string              `json:"field,omitempty" example:"title"`
	Details string              `json:"details,omitempty" example:"Additional error details"`
	Cause   string              `json:"cause,omitempty" example:"Underlying error cause"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// BlogTableResponse is the payload of the ajax table
type BlogTableResponse struct {
	Draw            int     `json:"draw"`
	RecordsTotal    int64   `json:"recordsTotal"`
	RecordsFiltered int64   `json:"recordsFiltered"`
	Data            [][]any `json:"data"`
}

// BlogResponse is a blog with its computed attributes
type BlogResponse struct {
	*models.Blog
	CoverURL string `json:"cover_url"`
	Summary  string `json:"summary"`
}

// BlogFormResponse feeds the create and edit forms
type BlogFormResponse struct {
	Blog      *BlogResponse    `json:"blog,omitempty"`
	Countries []models.Country `json:"countries"`
	Flashes   *FlashMessages   `json:"flashes"`
	CSRFToken string           `json:"csrf_token,omitempty"`
}

// MutationResponse is returned to ajax callers after a successful create or update
type MutationResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

// DestroyResponse carries the number of rows soft deleted
type DestroyResponse struct {
	Status int64 `json:"status"`
}

// SearchResult is one published blog matching a search query
type SearchResult struct {
	ID        uint   `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	CoverURL  string `json:"cover_url"`
	CountryID uint   `json:"country_id"`
}

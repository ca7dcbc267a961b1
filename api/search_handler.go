package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type searchHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.BlogService
}

func newSearchHandler(service *services.BlogService) searchHandler {
	logger := log.With().Str("handlerName", "searchHandler").Logger()

	return searchHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// searchBlogs searches published blogs
// @Summary Search blogs
// @Description Published blogs whose indexed slug, title, content or country match q
// @Tags Search
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "At most 50"
// @Success 200 {array} SearchResult
// @Router /search/blogs [get]
func (h searchHandler) searchBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		limit := defaultSearchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be a positive integer"))
				return
			}
			limit = min(parsed, maxSearchLimit)
		}

		blogs, err := h.service.Search(r.Context(), query, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		results := make([]SearchResult, 0, len(blogs))
		for _, blog := range blogs {
			results = append(results, SearchResult{
				ID:        blog.ID,
				Slug:      blog.Slug,
				Title:     blog.Title,
				Summary:   blog.Summary(),
				CoverURL:  h.service.CoverURL(blog),
				CountryID: blog.CountryID,
			})
		}

		h.responder.WriteJSON(w, results)
	}
}

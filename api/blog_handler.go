package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/rpupo63/blog-admin-backend/authz"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	addedSuccess  = "added_success"
	updateSuccess = "update_success"
)

type blogHandler struct {
	responder     Responder
	logger        zerolog.Logger
	service       *services.BlogService
	policy        authz.Policy
	flashes       flashStore
	baseURL       string
	exactFiltered bool
	maxBodyBytes  int64
}

type blogHandlerOptions struct {
	baseURL       string
	exactFiltered bool
	maxBodyBytes  int64
}

func newBlogHandler(service *services.BlogService, policy authz.Policy, flashes flashStore, opts blogHandlerOptions) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		service:       service,
		policy:        policy,
		flashes:       flashes,
		baseURL:       opts.baseURL,
		exactFiltered: opts.exactFiltered,
		maxBodyBytes:  opts.maxBodyBytes,
	}
}

func blogIDParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "blogID"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewBadRequestError("invalid blogID")
	}
	return uint(id), nil
}

func (h blogHandler) blogResponse(blog *models.Blog) *BlogResponse {
	return &BlogResponse{
		Blog:     blog,
		CoverURL: h.service.CoverURL(blog),
		Summary:  blog.Summary(),
	}
}

// index serves the blog table
// @Summary List blogs
// @Description Ajax callers get one page of the admin table, browsers get the page shell
// @Tags Blogs
// @Produce json,html
// @Param start query int false "Offset"
// @Param length query int false "Page size, -1 for all"
// @Param search[value] query string false "Keyword matched against title and slug"
// @Param order[0][column] query int false "Sort column index"
// @Param order[0][dir] query string false "asc or desc"
// @Param draw query int false "Echoed back"
// @Success 200 {object} BlogTableResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid paging or sort parameters"
// @Failure 403 {object} ErrorResponse "Forbidden - Missing blogs.index"
// @Router /admin/blogs [get]
func (h blogHandler) index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !wantsJSON(r) {
			if err := renderBlogIndexPage(w, h.baseURL, csrf.Token(r), h.policy.Can(r.Context(), authz.BlogsCreate)); err != nil {
				h.logger.Error().Err(err).Msg("failed to render blog index page")
			}
			return
		}

		q, draw, err := parseTableQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.service.Table(r.Context(), q)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		actions := rowActions{
			show:    h.policy.Can(r.Context(), authz.BlogsShow),
			edit:    h.policy.Can(r.Context(), authz.BlogsEdit),
			destroy: h.policy.Can(r.Context(), authz.BlogsDestroy),
		}

		rows := make([][]any, 0, len(page.Blogs))
		for _, blog := range page.Blogs {
			rows = append(rows, blogRow(blog, h.service.CoverURL(blog), h.baseURL, actions))
		}

		filtered := page.Total
		if h.exactFiltered {
			filtered = page.Filtered
		}

		h.responder.WriteJSON(w, BlogTableResponse{
			Draw:            draw,
			RecordsTotal:    page.Total,
			RecordsFiltered: filtered,
			Data:            rows,
		})
	}
}

// create returns what the create form needs
// @Summary Blog create form
// @Tags Blogs
// @Produce json
// @Success 200 {object} BlogFormResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Missing blogs.create"
// @Router /admin/blogs/create [get]
func (h blogHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countries, err := h.service.Countries(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, BlogFormResponse{
			Countries: countries,
			Flashes:   h.flashes.pop(w, r),
			CSRFToken: csrf.Token(r),
		})
	}
}

// store creates a blog
// @Summary Create blog
// @Tags Blogs
// @Accept multipart/form-data,application/x-www-form-urlencoded
// @Produce json
// @Param title formData string true "Title"
// @Param slug formData string true "Slug"
// @Param country_id formData int true "Country"
// @Param cover formData file false "Cover image"
// @Param tags[] formData []string false "Tag ids or names"
// @Success 200 {object} MutationResponse
// @Success 303 "Browser forms are redirected back"
// @Failure 422 {object} ErrorResponse "Unprocessable Entity - Validation failed"
// @Router /admin/blogs [post]
func (h blogHandler) store() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseBlogForm(w, r, h.maxBodyBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.service.Create(r.Context(), in)
		if err != nil {
			h.writeMutationError(w, r, in, err)
			return
		}

		blogMutations.WithLabelValues("create").Inc()
		h.writeMutationSuccess(w, r, blog, addedSuccess)
	}
}

// show returns a single blog
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param blogID path int true "Blog ID"
// @Success 200 {object} BlogResponse
// @Failure 404 {object} ErrorResponse "Not Found - Blog not found"
// @Router /admin/blogs/{blogID} [get]
func (h blogHandler) show() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.service.Find(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, h.blogResponse(blog))
	}
}

// edit returns what the edit form needs
// @Summary Blog edit form
// @Tags Blogs
// @Produce json
// @Param blogID path int true "Blog ID"
// @Success 200 {object} BlogFormResponse
// @Failure 404 {object} ErrorResponse "Not Found - Blog not found"
// @Router /admin/blogs/{blogID}/edit [get]
func (h blogHandler) edit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.service.Find(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		countries, err := h.service.Countries(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, BlogFormResponse{
			Blog:      h.blogResponse(blog),
			Countries: countries,
			Flashes:   h.flashes.pop(w, r),
			CSRFToken: csrf.Token(r),
		})
	}
}

// update overwrites a blog. Leaving out the published flag turns the blog into a draft.
// @Summary Update blog
// @Tags Blogs
// @Accept multipart/form-data,application/x-www-form-urlencoded
// @Produce json
// @Param blogID path int true "Blog ID"
// @Success 200 {object} MutationResponse
// @Success 303 "Browser forms are redirected back"
// @Failure 404 {object} ErrorResponse "Not Found - Blog not found"
// @Failure 422 {object} ErrorResponse "Unprocessable Entity - Validation failed"
// @Router /admin/blogs/{blogID} [put]
func (h blogHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		in, err := parseBlogForm(w, r, h.maxBodyBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.service.Update(r.Context(), id, in)
		if err != nil {
			h.writeMutationError(w, r, in, err)
			return
		}

		blogMutations.WithLabelValues("update").Inc()
		h.writeMutationSuccess(w, r, blog, updateSuccess)
	}
}

// destroy soft deletes a blog
// @Summary Delete blog
// @Tags Blogs
// @Produce json
// @Param blogID path int true "Blog ID"
// @Success 200 {object} DestroyResponse "status is 1 when a row was deleted, 0 otherwise"
// @Router /admin/blogs/{blogID} [delete]
func (h blogHandler) destroy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		affected, err := h.service.Destroy(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if affected > 0 {
			blogMutations.WithLabelValues("destroy").Inc()
		}
		h.responder.WriteJSON(w, DestroyResponse{Status: affected})
	}
}

func (h blogHandler) writeMutationSuccess(w http.ResponseWriter, r *http.Request, blog *models.Blog, message string) {
	if wantsJSON(r) {
		h.responder.WriteJSON(w, MutationResponse{Status: "success", Message: message, ID: blog.ID})
		return
	}

	h.flashes.add(w, r, FlashMessages{Success: message})
	http.Redirect(w, r, backURL(r, h.baseURL), http.StatusSeeOther)
}

// writeMutationError sends browser forms back with their errors and input; everything
// else, and every non validation error, is answered directly.
func (h blogHandler) writeMutationError(w http.ResponseWriter, r *http.Request, in services.BlogInput, err error) {
	if wantsJSON(r) || !errs.IsValidation(err) {
		h.responder.WriteError(w, err)
		return
	}

	h.flashes.add(w, r, FlashMessages{Errors: errs.ValidationFields(err), Old: oldInput(in)})
	http.Redirect(w, r, backURL(r, h.baseURL), http.StatusSeeOther)
}

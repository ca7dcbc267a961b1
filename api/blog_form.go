package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpupo63/blog-admin-backend/config"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/services"
)

const formMemory = 4 << 20

// wantsJSON reports whether the caller is a script rather than a browser form.
func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseBlogForm reads a urlencoded or multipart blog form. maxBytes bounds the whole body.
func parseBlogForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.BlogInput, error) {
	var in services.BlogInput

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(formMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return in, errs.NewMaxBodySizeExceededError(maxBytes)
		}
		return in, errs.NewMalformedPayloadError("form", err)
	}

	in = services.BlogInput{
		Title:          r.PostFormValue("title"),
		Slug:           r.PostFormValue("slug"),
		CountryID:      r.PostFormValue("country_id"),
		Content:        r.PostFormValue("content"),
		SeoTitle:       r.PostFormValue("seo_title"),
		SeoURL:         r.PostFormValue("seo_url"),
		SeoH1:          r.PostFormValue("seo_h1"),
		SeoKeywords:    r.PostFormValue("seo_keywords"),
		SeoDescription: r.PostFormValue("seo_description"),
		CanComment:     config.ParseBool(r.PostFormValue("can_comment")),
		Published:      config.ParseBool(r.PostFormValue("published")),
		Tags:           formTags(r),
		Cover:          coverFile(r.MultipartForm),
	}
	return in, nil
}

// formTags accepts both tags[] and repeated tags fields.
func formTags(r *http.Request) []string {
	var tags []string
	tags = append(tags, r.PostForm["tags[]"]...)
	return append(tags, r.PostForm["tags"]...)
}

// coverFile ignores the empty part browsers send for an untouched file input.
func coverFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	for _, header := range form.File["cover"] {
		if header.Filename != "" || header.Size > 0 {
			return header
		}
	}
	return nil
}

// oldInput is what a browser form is refilled with after a failed submission.
func oldInput(in services.BlogInput) map[string]string {
	return map[string]string{
		"title":           in.Title,
		"slug":            in.Slug,
		"country_id":      in.CountryID,
		"content":         in.Content,
		"seo_title":       in.SeoTitle,
		"seo_url":         in.SeoURL,
		"seo_h1":          in.SeoH1,
		"seo_keywords":    in.SeoKeywords,
		"seo_description": in.SeoDescription,
	}
}

// backURL is where a browser form returns to: the Referer when it points at this
// host or at baseURL, the blog list otherwise.
func backURL(r *http.Request, baseURL string) string {
	const fallback = "/admin/blogs"

	referer, err := url.Parse(r.Referer())
	if err != nil || r.Referer() == "" {
		return fallback
	}
	if referer.Scheme != "http" && referer.Scheme != "https" {
		return fallback
	}

	allowed := []string{r.Host}
	if base, err := url.Parse(baseURL); err == nil && base.Host != "" {
		allowed = append(allowed, base.Host)
	}
	for _, host := range allowed {
		if strings.EqualFold(referer.Host, host) {
			return referer.String()
		}
	}
	return fallback
}

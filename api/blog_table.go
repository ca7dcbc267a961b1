package api

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
)

const (
	tableDateFormat   = "2006-01-02 15:04:05"
	tableTitleWords   = 18
	defaultPageLength = 10
)

var leadingWords = regexp.MustCompile(fmt.Sprintf(`^\s*(?:\S+\s*){1,%d}`, tableTitleWords))

// tableParam returns the first non-empty value among the bracket and dot spellings of a parameter.
func tableParam(r *http.Request, names ...string) string {
	query := r.URL.Query()
	for _, name := range names {
		if value := strings.TrimSpace(query.Get(name)); value != "" {
			return value
		}
	}
	return ""
}

func intParam(r *http.Request, field string, defaultValue int, names ...string) (int, error) {
	raw := tableParam(r, names...)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewInvalidFieldError(field, "must be an integer")
	}
	return value, nil
}

// parseTableQuery reads the datatable request. The draw token is echoed back as is
// and falls back to zero when it is not a number.
func parseTableQuery(r *http.Request) (database.BlogTableQuery, int, error) {
	var q database.BlogTableQuery

	draw, _ := strconv.Atoi(tableParam(r, "draw"))

	start, err := intParam(r, "start", 0, "start")
	if err != nil {
		return q, draw, err
	}
	length, err := intParam(r, "length", defaultPageLength, "length")
	if err != nil {
		return q, draw, err
	}
	column, err := intParam(r, "order", 0, "order[0][column]", "order.0.column")
	if err != nil {
		return q, draw, err
	}
	if column < 0 || column >= len(database.BlogTableColumns) {
		return q, draw, errs.NewInvalidFieldError("order", fmt.Sprintf("column index must be between 0 and %d", len(database.BlogTableColumns)-1))
	}

	dir := strings.ToLower(tableParam(r, "order[0][dir]", "order.0.dir"))
	switch dir {
	case "":
		dir = "desc"
	case "asc", "desc":
	default:
		return q, draw, errs.NewInvalidFieldError("order", "direction must be asc or desc")
	}

	if start < 0 {
		start = 0
	}
	if length < 0 {
		length = -1
	}

	q = database.BlogTableQuery{
		Offset:     start,
		Limit:      length,
		Keyword:    tableParam(r, "search[value]", "search.value"),
		SortColumn: database.BlogTableColumns[column],
		Descending: dir == "desc",
	}
	return q, draw, nil
}

// rowActions says which per-row links the caller may see.
type rowActions struct {
	show    bool
	edit    bool
	destroy bool
}

// blogRow renders one table row: id, title with thumbnail, country, can_comment,
// views, published_at, created_at, updated_at and the action links.
func blogRow(blog *models.Blog, coverURL, baseURL string, actions rowActions) []any {
	title := html.EscapeString(blog.Title)
	thumbnail := fmt.Sprintf(
		`<img src="%s" class="me-1"><p class="m-0 d-inline-block align-middle font-16" title="%s">%s</p>`,
		html.EscapeString(coverURL), title, html.EscapeString(truncateWords(blog.Title)),
	)

	var publishedAt any
	if blog.PublishedAt != nil {
		publishedAt = blog.PublishedAt.Format(tableDateFormat)
	}

	return []any{
		blog.ID,
		thumbnail,
		html.EscapeString(blog.CountryName()),
		blog.CanComment,
		blog.Views,
		publishedAt,
		blog.CreatedAt.Format(tableDateFormat),
		blog.UpdatedAt.Format(tableDateFormat),
		actionLinks(blog.ID, baseURL, actions),
	}
}

func actionLinks(id uint, baseURL string, actions rowActions) string {
	blogURL := html.EscapeString(fmt.Sprintf("%s/admin/blogs/%d", baseURL, id))

	var links strings.Builder
	if actions.show {
		links.WriteString(`<a href="` + blogURL + `" class="action-icon"><i class="mdi mdi-eye"></i></a>`)
	}
	if actions.edit {
		links.WriteString(`<a href="` + blogURL + `/edit" class="action-icon"><i class="mdi mdi-square-edit-outline"></i></a>`)
	}
	if actions.destroy {
		links.WriteString(`<a href="javascript:void(0);" class="action-icon delete-btn" data-table="blogs_table" data-url="` + blogURL + `"> <i class="mdi mdi-delete"></i></a>`)
	}
	return links.String()
}

// truncateWords keeps the first tableTitleWords words and appends "..." when anything was cut.
func truncateWords(s string) string {
	match := leadingWords.FindString(s)
	if match == "" || len(match) == len(s) {
		return s
	}
	return strings.TrimRight(match, " \t\r\n") + "..."
}

package api

import (
	"html/template"
	"net/http"

	"github.com/rpupo63/blog-admin-backend/database"
)

var blogIndexPage = template.Must(template.New("blogs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.CSRFToken}}">
<title>Blogs</title>
</head>
<body>
<div class="card">
  <div class="card-body">
    {{if .CanCreate}}<a href="{{.BaseURL}}/admin/blogs/create" class="btn btn-danger mb-2">Add blog</a>{{end}}
    <table id="blogs_table" class="table table-centered w-100" data-url="{{.BaseURL}}/admin/blogs">
      <thead>
        <tr>{{range .Columns}}<th>{{.}}</th>{{end}}<th></th></tr>
      </thead>
    </table>
  </div>
</div>
</body>
</html>
`))

type blogIndexView struct {
	BaseURL   string
	CSRFToken string
	CanCreate bool
	Columns   []string
}

// renderBlogIndexPage writes the shell the datatable script fills through ajax.
func renderBlogIndexPage(w http.ResponseWriter, baseURL, csrfToken string, canCreate bool) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return blogIndexPage.Execute(w, blogIndexView{
		BaseURL:   baseURL,
		CSRFToken: csrfToken,
		CanCreate: canCreate,
		Columns:   database.BlogTableColumns,
	})
}

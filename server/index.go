package server

import (
	_ "embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/webshelf/core"
)

//go:embed index.html.tmpl
var indexTemplate string

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"prettyDate": func(t time.Time) string {
		return t.Format("Jan 02, 2006")
	},
	"inc": func(n int) int { return n + 1 },
	"dec": func(n int) int { return n - 1 },
}).Parse(indexTemplate))

// renderIndex writes the e-reader friendly article list page.
func (s *Server) renderIndex(w http.ResponseWriter, view core.PageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, view); err != nil {
		s.logger.Error("rendering index", "error", err)
	}
}

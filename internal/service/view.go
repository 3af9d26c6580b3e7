package service

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"topmovies/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	funcs := template.FuncMap{
		"rating": func(r *float64) string {
			if r == nil {
				return "Not rated"
			}
			return strconv.FormatFloat(*r, 'f', -1, 64)
		},
		"rank": func(r *int) string {
			if r == nil {
				return "-"
			}
			return strconv.Itoa(*r)
		},
		"text": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
	for _, name := range []string{"index", "add", "select", "edit", "error"} {
		pages[name] = template.Must(template.New("base").Funcs(funcs).ParseFS(
			templateFS, "templates/base.html", "templates/"+name+".html"))
	}
}

type indexPage struct {
	Flashes []string
	Movies  []*biz.Movie
}

type addPage struct {
	CSRFToken string
	Name      string
	Error     string
}

type selectPage struct {
	Query      string
	Candidates []*biz.Candidate
}

type editPage struct {
	CSRFToken string
	Movie     *biz.Movie
	Rating    string
	Review    string
	Errors    map[string]string
}

type errorPage struct {
	Code    int32
	Reason  string
	Message string
	MovieID string
}

// render executes page into a buffer first so a template failure never
// leaves a half-written response.
func render(w http.ResponseWriter, status int, page string, data interface{}) error {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		return errors.InternalServer("RENDER", "failed to render page").WithCause(err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderError writes err as an HTML error page with its kratos status code.
func RenderError(w http.ResponseWriter, err error) {
	se := errors.FromError(err)
	page := errorPage{
		Code:    se.Code,
		Reason:  se.Reason,
		Message: se.Message,
		MovieID: se.Metadata["movie_id"],
	}
	if se.Code >= http.StatusInternalServerError && se.Reason != "PROVIDER_ERROR" && se.Reason != "MALFORMED_RESPONSE" {
		page.Message = "Something went wrong on our side."
	}
	if rerr := render(w, int(se.Code), "error", page); rerr != nil {
		http.Error(w, se.Message, int(se.Code))
	}
}

package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"

	"github.com/noah-isme/watchlist/internal/models"
)

// Page template names.
const (
	PageIndex   = "index"
	PageHome    = "home"
	PageArchive = "archive"
	PageRate    = "rate"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").ParseFS(templateFS, "templates/*.tmpl")
}

// Static returns the stylesheet directory for serving under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData is the common template payload.
type PageData struct {
	PageTitle string
	Notice    string
	Genres    []models.Genre
	Search    string
	Title     string
	Movies    template.HTML

	ExportCSV template.URL
	ExportPDF template.URL
}

const exportPath = "/archive/export"

// NewPageData fills the fields every page expects.
func NewPageData(title string) PageData {
	data := PageData{PageTitle: title, Genres: models.AllGenres()}
	data.SetExportFilters(nil)
	return data
}

// SetExportFilters points the download links at the archive filtered by
// filters.
func (d *PageData) SetExportFilters(filters url.Values) {
	d.ExportCSV = exportURL("csv", filters)
	d.ExportPDF = exportURL("pdf", filters)
}

func exportURL(format string, filters url.Values) template.URL {
	values := url.Values{}
	for key, v := range filters {
		values[key] = v
	}
	values.Set("format", format)
	return template.URL(exportPath + "?" + values.Encode())
}

// Fragment marks a RenderMovies result as safe for embedding.
func Fragment(movies []models.Movie) template.HTML {
	return template.HTML(RenderMovies(movies))
}

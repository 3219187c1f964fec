package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var errNotLoaded = errors.New("page templates not loaded: call views.LoadTemplates during startup")

type IndexData struct {
	Title string
	Rooms []string
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// PlotData is the view model for a single rendered plot.
type PlotData struct {
	Title    string
	Room     string
	Date     string
	Month    int
	Day      int
	Samples  int
	PlotFile string
	// Version busts browser caches since artifacts are overwritten in place.
	Version int64
}

func RenderPlot(w io.Writer, data *PlotData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "display_plot.html", data)
}

type FailedRoom struct {
	Room  string
	Error string
}

type GalleryData struct {
	Title     string
	Failed    []FailedRoom
	PlotFiles []string
	Version   int64
}

func RenderGallery(w io.Writer, data *GalleryData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "all_plots.html", data)
}

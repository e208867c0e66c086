// Package site serves the server rendered dashboard pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/internal/domain/validation"
	"github.com/okian/bilanz/pkg/logger"
)

// ErrGenerate is returned by New when a template or content file is broken.
var ErrGenerate = errors.New("site generation failed")

// Page identifies one dashboard page.
type Page int

// Pages in navigation order.
const (
	PageHome Page = iota
	PageAnalysis
	PageMarkets
	PageLinks
	PageOther
	PageImprint
)

// Dependencies required by the pages.
type Dependencies interface {
	Analyze(ctx context.Context, raw []validation.RawPeriod) (model.ComparisonSet, error)
	Charts(ctx context.Context, set model.ComparisonSet) (chart.Dashboard, error)
	IndexHistory(ctx context.Context) []quote.Sample
	IndexSymbols() []string
}

// pageSpec is the lookup entry of a page: where it lives, how it is titled
// and which handler renders it.
type pageSpec struct {
	path   string
	title  string
	render func(s *Site, w http.ResponseWriter, r *http.Request)
	// markdown names the embedded content file of static pages.
	markdown string
}

// pages is filled in init because the render handlers themselves look up
// page titles.
var pages map[Page]pageSpec

func init() { //nolint:gochecknoinits // render handlers refer back to pages
	pages = map[Page]pageSpec{
		PageHome:     {path: "/", title: "Startseite", render: (*Site).renderMarkdown, markdown: "home.md"},
		PageAnalysis: {path: "/bilanzanalyse", title: "Bilanzanalyse", render: (*Site).renderAnalysis},
		PageMarkets:  {path: "/maerkte", title: "Märkte", render: (*Site).renderMarkets},
		PageLinks:    {path: "/links", title: "Linkliste", render: (*Site).renderMarkdown, markdown: "links.md"},
		PageOther:    {path: "/weitere-anwendung", title: "Weitere Anwendung", render: (*Site).renderMarkdown, markdown: "other.md"},
		PageImprint:  {path: "/impressum", title: "Impressum", render: (*Site).renderMarkdown, markdown: "imprint.md"},
	}
}

// Pages returns every page in navigation order.
func Pages() []Page {
	return []Page{PageHome, PageAnalysis, PageMarkets, PageLinks, PageOther, PageImprint}
}

// Path returns the URL path of p.
func (p Page) Path() string { return pages[p].path }

// Title returns the navigation title of p.
func (p Page) Title() string { return pages[p].title }

func (p Page) String() string { return p.Title() }

// navItem is one navigation entry of the layout.
type navItem struct {
	Path   string
	Title  string
	Active bool
}

// layoutData is shared by every page template.
type layoutData struct {
	Title   string
	Nav     []navItem
	Assets  []string
	Refresh int // seconds, 0 disables the meta refresh
}

// Site renders the dashboard.
type Site struct {
	deps Dependencies
	cfg  config

	templates map[Page]*template.Template
	markdown  map[string]template.HTML
	logger    logger.Logger
}

// New parses the embedded templates and renders the Markdown content.
func New(deps Dependencies, opts ...Option) (*Site, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Site{
		deps:      deps,
		cfg:       cfg,
		templates: make(map[Page]*template.Template, len(pages)),
		markdown:  make(map[string]template.HTML),
		logger:    cfg.logger,
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("site")
	}

	for _, p := range Pages() {
		spec := pages[p]
		file := "markdown.html"
		switch p {
		case PageAnalysis:
			file = "analysis.html"
		case PageMarkets:
			file = "markets.html"
		}
		t, err := parsePage(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrGenerate, file, err)
		}
		s.templates[p] = t

		if spec.markdown != "" {
			html, err := renderMarkdown(spec.markdown)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrGenerate, spec.markdown, err)
			}
			s.markdown[spec.markdown] = html
		}
	}
	formulas, err := renderMarkdown(formulasFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGenerate, formulasFile, err)
	}
	s.markdown[formulasFile] = formulas
	return s, nil
}

// Register attaches every page and the static assets to router.
func (s *Site) Register(router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(StaticFS())))
	for _, p := range Pages() {
		p := p
		spec := pages[p]
		methods := []string{http.MethodGet}
		if p == PageAnalysis {
			methods = append(methods, http.MethodPost)
		}
		router.HandleFunc(spec.path, func(w http.ResponseWriter, r *http.Request) {
			spec.render(s, w, r)
		}).Methods(methods...)
	}
}

// pageOf returns the page registered for the request path.
func pageOf(r *http.Request) Page {
	for p, spec := range pages {
		if spec.path == r.URL.Path {
			return p
		}
	}
	return PageHome
}

func (s *Site) layout(active Page) layoutData {
	nav := make([]navItem, 0, len(pages))
	for _, p := range Pages() {
		nav = append(nav, navItem{Path: p.Path(), Title: p.Title(), Active: p == active})
	}
	return layoutData{Title: active.Title(), Nav: nav}
}

// execute renders page into a buffer first so template errors never leave a
// half written response.
func (s *Site) execute(w http.ResponseWriter, r *http.Request, p Page, status int, data any) {
	var buf bytes.Buffer
	if err := s.templates[p].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error(r.Context(), "page render failed", logger.String("page", p.Title()), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type markdownView struct {
	layoutData
	Body template.HTML
}

func (s *Site) renderMarkdown(w http.ResponseWriter, r *http.Request) {
	p := pageOf(r)
	s.execute(w, r, p, http.StatusOK, markdownView{
		layoutData: s.layout(p),
		Body:       s.markdown[pages[p].markdown],
	})
}

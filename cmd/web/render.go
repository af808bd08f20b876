package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"acesoftware.in/marketing-web/internal/format"
	mw "acesoftware.in/marketing-web/internal/middleware"
	"acesoftware.in/marketing-web/internal/observability"
)

// templateSet parses every .tmpl file under dir. In dev mode, templates are
// reparsed on each render so edits show up without a restart.
type templateSet struct {
	dir    string
	dev    bool
	funcs  template.FuncMap
	cached *template.Template
}

func newTemplateSet(dir string, dev bool, funcs template.FuncMap) (*templateSet, error) {
	ts := &templateSet{dir: dir, dev: dev, funcs: funcs}
	t, err := ts.parse()
	if err != nil {
		return nil, err
	}
	ts.cached = t
	return ts, nil
}

func (ts *templateSet) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(ts.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", ts.dir)
	}
	return template.New("_root").Funcs(ts.funcs).ParseFiles(files...)
}

func (ts *templateSet) execute(name string, data any) ([]byte, error) {
	t := ts.cached
	if ts.dev {
		fresh, err := ts.parse()
		if err != nil {
			return nil, fmt.Errorf("template parse: %w", err)
		}
		t = fresh
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *app) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return a.bundle.T(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			return a.bundle.TF(lang, key, args...)
		},
		"fmtPrice": format.FmtPrice,
		"fmtDate":  format.FmtDate,
		"add":      func(a, b int) int { return a + b },
	}
}

// renderPage executes the page_<name> template with the shared layout.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	a.renderTemplate(w, r, status, "page_"+name, data)
}

// renderTemplate executes a single named template. Output is buffered so a
// failing template never leaves a half-written response.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := a.tmpl.execute(name, data)
	if err != nil {
		observability.FromContext(r.Context()).Error("render template",
			zap.String("template", name),
			zap.Error(err),
		)
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

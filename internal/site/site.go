// Package site renders a directory of template source files against a
// shared data file. It backs the render, watch and serve commands.
package site

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/conneroisu/htmltag/internal/compiler"
	"github.com/conneroisu/htmltag/internal/config"
	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/renderer"
	"github.com/conneroisu/htmltag/internal/source"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// Extensions lists the file types treated as pages.
var Extensions = []string{".html", ".htm"}

// Options configures a Site.
type Options struct {
	Root string
	// Data is a YAML or JSON file bound to every page. Optional.
	Data     string
	Indent   int
	Compiler *compiler.Compiler
	Logger   logging.Logger
}

// Site renders pages found under a root directory.
type Site struct {
	root     string
	data     string
	compiler *compiler.Compiler
	renderer *renderer.Renderer
	logger   logging.Logger
}

// New creates a site.
func New(opts Options) *Site {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Compiler == nil {
		opts.Compiler = compiler.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Site{
		root:     opts.Root,
		data:     opts.Data,
		compiler: opts.Compiler,
		renderer: renderer.New(opts.Indent),
		logger:   opts.Logger.WithComponent("site"),
	}
}

// FromConfig creates a site from the templates and render sections.
func FromConfig(cfg *config.Config, c *compiler.Compiler, logger logging.Logger) *Site {
	return New(Options{
		Root:     cfg.Templates.Dir,
		Data:     cfg.Templates.Data,
		Indent:   cfg.Render.Indent,
		Compiler: c,
		Logger:   logger,
	})
}

// Root returns the site directory.
func (s *Site) Root() string { return s.root }

// Compiler returns the compiler pages are built with.
func (s *Site) Compiler() *compiler.Compiler { return s.compiler }

// Pages lists page names relative to the root, with forward slashes, in
// sorted order. Files and directories starting with "_" or "." are
// partials or hidden and are not listed.
func (s *Site) Pages() ([]string, error) {
	var pages []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != s.root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsPage(name) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		pages = append(pages, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(pages)
	return pages, nil
}

// IsPage reports whether name has a page extension.
func IsPage(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// Data loads the data file, or returns an empty mapping when none is set.
func (s *Site) Data() (any, error) {
	if s.data == "" {
		return tmpl.Dict{}, nil
	}
	return source.LoadData(s.data)
}

// Template parses the named page and binds it to the site data.
func (s *Site) Template(name string) (tmpl.Template, error) {
	clean := path.Clean("/" + filepath.ToSlash(name))[1:]
	if clean == "" {
		return tmpl.Template{}, &errors.FileError{File: name, Err: os.ErrNotExist, Timestamp: time.Now()}
	}

	data, err := s.Data()
	if err != nil {
		return tmpl.Template{}, &errors.FileError{File: s.data, Err: err, Timestamp: time.Now()}
	}

	src, err := source.ParseFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		return tmpl.Template{}, &errors.FileError{File: clean, Err: err, Timestamp: time.Now()}
	}

	t, err := src.Bind(data, source.Dir(s.root))
	if err != nil {
		return tmpl.Template{}, &errors.FileError{File: clean, Err: err, Timestamp: time.Now()}
	}
	return t, nil
}

// Compile builds the resolved tree for the named page.
func (s *Site) Compile(ctx context.Context, name string) (nodes.Node, error) {
	t, err := s.Template(name)
	if err != nil {
		return nil, err
	}
	n, err := s.compiler.Compile(ctx, t)
	if err != nil {
		return nil, &errors.FileError{File: name, Err: err, Timestamp: time.Now()}
	}
	return n, nil
}

// Render renders the named page to markup.
func (s *Site) Render(ctx context.Context, name string) (string, error) {
	op := logging.StartOperation(s.logger, "render")
	n, err := s.Compile(ctx, name)
	if err != nil {
		op.EndWithError(ctx, err)
		return "", err
	}
	op.End(ctx)
	return s.renderer.Render(n), nil
}

// RenderAll renders every page, collecting failures per file. The returned
// map holds the pages that rendered.
func (s *Site) RenderAll(ctx context.Context) (map[string]string, *errors.ErrorCollector, error) {
	pages, err := s.Pages()
	if err != nil {
		return nil, nil, err
	}

	out := make(map[string]string, len(pages))
	collector := errors.NewErrorCollector()
	for _, name := range pages {
		html, err := s.Render(ctx, name)
		if err != nil {
			collector.Add(name, err)
			continue
		}
		out[name] = html
	}

	s.logger.Info(ctx, "rendered site", "pages", len(out), "failed", len(collector.GetErrors()))
	return out, collector, nil
}

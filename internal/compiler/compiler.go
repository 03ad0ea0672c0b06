// Package compiler wires the pipeline together: the placeholder codec
// instruments literal segments, the parser builds a placeholder tree (via
// the template cache), and the engine resolves it against interpolations.
package compiler

import (
	"context"
	"sync"

	"github.com/conneroisu/htmltag/internal/cache"
	"github.com/conneroisu/htmltag/internal/engine"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/parser"
	"github.com/conneroisu/htmltag/internal/placeholder"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// DefaultCacheSize is the number of placeholder trees kept by a compiler
// created without WithCache or WithCacheSize.
const DefaultCacheSize = 1024

// Compiler compiles templates into resolved node trees. It is safe for
// concurrent use.
type Compiler struct {
	codec  *placeholder.Codec
	cache  *cache.TemplateCache
	logger logging.Logger
	engine *engine.Engine
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCache shares an existing cache.
func WithCache(c *cache.TemplateCache) Option {
	return func(comp *Compiler) { comp.cache = c }
}

// WithCacheSize bounds the cache; zero or less means unbounded.
func WithCacheSize(n int) Option {
	return func(comp *Compiler) { comp.cache = cache.New(n) }
}

// WithCodec sets the placeholder codec.
func WithCodec(c *placeholder.Codec) Option {
	return func(comp *Compiler) { comp.codec = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(comp *Compiler) { comp.logger = l }
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.codec == nil {
		c.codec = placeholder.Default()
	}
	if c.cache == nil {
		c.cache = cache.New(DefaultCacheSize)
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	c.logger = c.logger.WithComponent("compiler")
	c.engine = engine.New(c, c.codec, c.logger)
	return c
}

var (
	defaultCompiler *Compiler
	defaultOnce     sync.Once
)

// Default returns the process-wide compiler.
func Default() *Compiler {
	defaultOnce.Do(func() {
		defaultCompiler = New()
	})
	return defaultCompiler
}

// Cache returns the compiler's template cache.
func (c *Compiler) Cache() *cache.TemplateCache { return c.cache }

// Codec returns the compiler's placeholder codec.
func (c *Compiler) Codec() *placeholder.Codec { return c.codec }

// Parse returns the placeholder tree for literal segments, building it on
// the first request and serving it from the cache afterwards.
func (c *Compiler) Parse(segments []string) (nodes.Node, error) {
	return c.cache.GetOrBuild(segments, func() (nodes.Node, error) {
		ctx := context.Background()
		op := logging.StartOperation(c.logger, "parse")
		c.logger.Debug(ctx, "template cache miss", "segments", len(segments))

		tree, err := parser.Build(c.codec, c.codec.Instrument(segments))
		if err != nil {
			op.EndWithError(ctx, err)
			return nil, err
		}
		op.End(ctx)
		return tree, nil
	})
}

// Compile resolves t into a node tree. Compiling the same literal segments
// again reuses the cached placeholder tree.
func (c *Compiler) Compile(ctx context.Context, t tmpl.Template) (nodes.Node, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	tree, err := c.Parse(t.Strings)
	if err != nil {
		return nil, err
	}
	return c.engine.Resolve(ctx, tree, t.Interpolations)
}

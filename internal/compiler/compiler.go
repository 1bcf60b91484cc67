// Package compiler assembles source units into class members.
package compiler

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/fs"
	"gopkg.microglot.org/jasm/internal/inheritance"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/lexer"
	"gopkg.microglot.org/jasm/internal/parser"
	"gopkg.microglot.org/jasm/internal/processor"
	"gopkg.microglot.org/jasm/internal/result"
	"gopkg.microglot.org/jasm/internal/target"
)

type Option func(c *Compiler) error

func OptionWithFS(fs jasm.FileSystem) Option {
	return func(c *Compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *Compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithTarget(target jasm.Target) Option {
	return func(c *Compiler) error {
		c.Target = target
		return nil
	}
}

// OptionWithVersion sets the class file major version of the output.
func OptionWithVersion(version uint16) Option {
	return func(c *Compiler) error {
		if version < 45 {
			return exc.Newf(exc.Location{}, exc.CodeInvalidConfiguration, "class file version %d is older than 45", version)
		}
		c.Version = version
		return nil
	}
}

// OptionWithOverlay supplies the member that partial declarations are
// merged into. The overlay itself is never modified.
func OptionWithOverlay(overlay *bytecode.ClassModel) Option {
	return func(c *Compiler) error {
		c.Overlay = overlay
		return nil
	}
}

func OptionWithAnnotationTarget(path string) Option {
	return func(c *Compiler) error {
		c.AnnotationTarget = path
		return nil
	}
}

func OptionWithInheritanceChecker(checker inheritance.Checker) Option {
	return func(c *Compiler) error {
		c.Checker = checker
		return nil
	}
}

// OptionWithFrames enables stack map frame computation. It requires an
// inheritance checker.
func OptionWithFrames(frames bool) Option {
	return func(c *Compiler) error {
		c.Frames = frames
		return nil
	}
}

func OptionWithLogger(logger logrus.FieldLogger) Option {
	return func(c *Compiler) error {
		c.Logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(c *Compiler) error {
		if n < 0 {
			return exc.Newf(exc.Location{}, exc.CodeInvalidConfiguration, "concurrency must not be negative but is %d", n)
		}
		c.MaxConcurrency = n
		return nil
	}
}

// OptionWithDumpWriter sets where token and tree dumps are written.
func OptionWithDumpWriter(w io.Writer) Option {
	return func(c *Compiler) error {
		c.Dump = w
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.FS == nil {
		dfs, err := NewSourceFS()
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Dump == nil {
		c.Dump = os.Stderr
	}
	return c, nil
}

// Compiler holds the options shared by every unit of a request. It is
// read only while compiling.
type Compiler struct {
	FS               jasm.FileSystem
	MaxConcurrency   int
	Reporter         exc.Reporter
	Target           jasm.Target
	Version          uint16
	Overlay          *bytecode.ClassModel
	AnnotationTarget string
	Checker          inheritance.Checker
	Frames           bool
	Logger           logrus.FieldLogger
	Dump             io.Writer
	dumpLock         sync.Mutex
}

var _ jasm.Compiler = (*Compiler)(nil)

type unit struct {
	name string
	file jasm.File
}

// Compile assembles every file and in-memory source of the request
// concurrently. Diagnostics go to the Reporter; the returned error is the
// set of reported errors, or the first fatal failure. Units that failed have
// a nil Output.
func (self *Compiler) Compile(ctx context.Context, req *jasm.CompileRequest) (*jasm.CompileResponse, error) {
	units := make([]unit, 0, len(req.Sources)+len(req.Files))
	for _, src := range req.Sources {
		units = append(units, unit{name: src.Name, file: fs.NewFileString(src.Name, src.Text, jasm.FileKindSource)})
	}
	for _, f := range req.Files {
		in, err := self.FS.Open(ctx, self.targetURI(f))
		if err != nil {
			return nil, err
		}
		for _, inf := range in {
			if inf.Kind(ctx) != jasm.FileKindSource {
				e := exc.Newf(exc.Location{URI: inf.Path(ctx)}, exc.CodeUnsupportedFileFormat, "cannot assemble a %s file", inf.Kind(ctx))
				if err := self.Reporter.Report(e); err != nil {
					return nil, err
				}
				continue
			}
			units = append(units, unit{name: inf.Path(ctx), file: inf})
		}
	}

	out := make([]*jasm.Unit, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.MaxConcurrency)
	for x, u := range units {
		x, u := x, u
		g.Go(func() error {
			compiled, err := self.compileUnit(gctx, u, req)
			if err != nil {
				return err
			}
			out[x] = compiled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &jasm.CompileResponse{Units: out}
	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return resp, exc.Multi(caught)
	}
	return resp, nil
}

func (self *Compiler) compileUnit(ctx context.Context, u unit, req *jasm.CompileRequest) (*jasm.Unit, error) {
	r := self.assemble(ctx, u.name, lexer.TokenizeFile(ctx, u.name, u.file), req.DumpTokens, req.DumpTree)
	for _, w := range r.Warnings() {
		self.Reporter.Warn(w)
	}
	for _, e := range r.Errors() {
		if err := self.Reporter.Report(e); err != nil {
			return nil, err
		}
	}
	compiled := &jasm.Unit{Name: u.name}
	if !r.IsOk() {
		return compiled, nil
	}
	b, err := bytecode.MarshalImage(r.Get())
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: u.name}, err)
	}
	compiled.Output = b
	return compiled, nil
}

// Assemble compiles a single unit of source text.
func (self *Compiler) Assemble(ctx context.Context, uri string, text string) result.Result[*bytecode.ClassModel] {
	return self.assemble(ctx, uri, lexer.Tokenize(ctx, uri, text), false, false)
}

func (self *Compiler) assemble(ctx context.Context, uri string, tokens result.Result[[]*jasm.Token], dumpTokens bool, dumpTree bool) result.Result[*bytecode.ClassModel] {
	log := self.Logger.WithField("file", uri)

	logStage(log, "lex", tokens)
	if dumpTokens {
		self.dump(tokens.Get())
	}
	tree := result.Chain(tokens, func(tokens []*jasm.Token) result.Result[[]ast.Node] {
		return parser.Parse(ctx, uri, tokens)
	})
	logStage(log, "parse", tree)
	if dumpTree {
		self.dump(tree.Get())
	}
	processed := result.Chain(tree, func(nodes []ast.Node) result.Result[[]ast.Node] {
		return processor.Process(ctx, nodes, self.Target)
	})
	logStage(log, "process", processed)
	main := result.FlatMap(processed, func(nodes []ast.Node) result.Result[ast.Node] {
		return processor.Main(uri, nodes)
	})
	built := result.FlatMap(main, func(node ast.Node) result.Result[*bytecode.ClassModel] {
		return self.build(ctx, uri, node)
	})
	logStage(log, "build", built)
	return built
}

func logStage[T any](log logrus.FieldLogger, stage string, r result.Result[T]) {
	log.WithFields(logrus.Fields{
		"stage":    stage,
		"errors":   len(r.Errors()),
		"warnings": len(r.Warnings()),
	}).Debug("stage finished")
}

func (self *Compiler) dump(v interface{}) {
	self.dumpLock.Lock()
	defer self.dumpLock.Unlock()
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	cfg.Fdump(self.Dump, v)
}

// targetURI makes file paths absolute against the working directory so
// that they work with the local FileSystem. Other URIs are left for another
// FileSystem implementation.
func (self *Compiler) targetURI(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme == "" && !filepath.IsAbs(name) {
		if abs, err := filepath.Abs(name); err == nil {
			name = abs
		}
	}
	return target.Normalize(name)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"gopkg.microglot.org/jasm/internal/analysis"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/bytecode/classreader"
	"gopkg.microglot.org/jasm/internal/compiler"
	"gopkg.microglot.org/jasm/internal/config"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/fs"
	"gopkg.microglot.org/jasm/internal/inheritance"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/printer"
	"gopkg.microglot.org/jasm/internal/shell"
	"gopkg.microglot.org/jasm/internal/target"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// flagLibrary sets the libraries key of the project file.
const flagLibrary = "library"

const usage = `usage:
  jasm compile   [flags] FILE...
  jasm decompile [flags] FILE
  jasm repl
`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: log}
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return exitUsage
	}
	switch args[0] {
	case "compile":
		return a.compile(ctx, args[1:])
	case "decompile":
		return a.decompile(ctx, args[1:])
	case "repl":
		return a.repl(ctx, args[1:])
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(stdout, usage)
		return exitOK
	}
	_, _ = fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
	return exitUsage
}

// settings are the flags shared by the subcommands that read the project
// file.
type settings struct {
	configPath string
	verbose    bool
	over       config.Config
}

func (self *settings) bind(flags *pflag.FlagSet) {
	flags.StringVar(&self.configPath, "config", "", "Project file. Defaults to "+config.FileName+" in the working directory when present.")
	flags.BoolVar(&self.verbose, "verbose", false, "Log every pipeline stage.")
	flags.StringVar(&self.over.Target, config.KeyTarget, "jvm", "Instruction set: jvm or dalvik.")
	flags.Uint16Var(&self.over.Version, config.KeyVersion, bytecode.DefaultVersion, "Class file major version of the output.")
	flags.StringSliceVar(&self.over.Libraries, flagLibrary, nil, "Folder of .class or .jimg files used to resolve type hierarchies. May repeat.")
	flags.BoolVar(&self.over.Frames, config.KeyFrames, false, "Compute stack map frames.")
	flags.BoolVar(&self.over.WarningsAsErrors, config.KeyWarningsAsErrors, false, "Fail when any warning is reported.")
}

// load merges the project file with the flags that were set.
func (self *settings) load(flags *pflag.FlagSet) (config.Config, error) {
	var cfg config.Config
	var err error
	if self.configPath != "" {
		cfg, err = config.Load(self.configPath)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return config.Config{}, errors.Wrap(wdErr, "finding working directory")
		}
		cfg, err = config.Find(wd)
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg = cfg.Merge(self.over, func(key string) bool {
		if key == config.KeyLibraries {
			return flags.Changed(flagLibrary)
		}
		f := flags.Lookup(key)
		return f != nil && f.Changed
	})
	return cfg, cfg.Validate()
}

func (self *app) fail(err error) int {
	var multi exc.Multi
	if errors.As(err, &multi) {
		for _, e := range multi {
			_, _ = fmt.Fprintln(self.stderr, e.Error())
		}
		return exitError
	}
	_, _ = fmt.Fprintln(self.stderr, err.Error())
	return exitError
}

func (self *app) usage(flags *pflag.FlagSet, err error) int {
	if errors.Is(err, pflag.ErrHelp) {
		flags.SetOutput(self.stdout)
		flags.PrintDefaults()
		return exitOK
	}
	_, _ = fmt.Fprintln(self.stderr, err.Error())
	flags.SetOutput(self.stderr)
	flags.PrintDefaults()
	return exitUsage
}

func (self *app) newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	return flags
}

// library builds the hierarchy checker from the configured folders and the
// platform folders.
func (self *app) library(cfg config.Config) (inheritance.Checker, error) {
	files, err := compiler.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	return compiler.NewDefaultLibrary(files, os.LookupEnv, cfg.Libraries...)
}

type compileOpts struct {
	settings
	output           string
	overlay          string
	annotationTarget string
	source           string
	dumpTokens       bool
	dumpTree         bool
}

func (self *app) compile(ctx context.Context, args []string) int {
	op := &compileOpts{}
	flags := self.newFlagSet("compile")
	op.bind(flags)
	flags.StringVar(&op.output, "output", ".", "Output directory or - for STDOUT.")
	flags.StringVar(&op.overlay, "overlay", "", "Class file or member image that partial declarations are merged into.")
	flags.StringVar(&op.annotationTarget, "annotation-target", "", "Where a bare annotation is attached: class, field:<name>:<descriptor> or method:<name>:<descriptor>.")
	flags.StringVar(&op.source, "source", "", "Assemble this text instead of, or in addition to, files.")
	flags.IntVar(&op.over.Concurrency, config.KeyConcurrency, 0, "Maximum units compiled at once. Zero uses every CPU.")
	flags.BoolVar(&op.dumpTokens, "dump-tokens", false, "Output the token stream as it is processed.")
	flags.BoolVar(&op.dumpTree, "dump-tree", false, "Output the parse tree after parsing.")
	if err := flags.Parse(args); err != nil {
		return self.usage(flags, err)
	}
	files := flags.Args()
	if len(files) == 0 && op.source == "" {
		return self.usage(flags, errors.New("compile needs at least one FILE or --source"))
	}
	cfg, err := op.load(flags)
	if err != nil {
		return self.fail(err)
	}
	if op.verbose {
		self.log.SetLevel(logrus.DebugLevel)
	}
	tgt, err := target.Parse(cfg.Target)
	if err != nil {
		return self.fail(err)
	}

	reporter := exc.NewReporter(nil)
	opts := []compiler.Option{
		compiler.OptionWithTarget(tgt),
		compiler.OptionWithVersion(cfg.Version),
		compiler.OptionWithMaxConcurrency(cfg.Concurrency),
		compiler.OptionWithLogger(self.log),
		compiler.OptionWithExcReporter(reporter),
		compiler.OptionWithDumpWriter(self.stderr),
		compiler.OptionWithFrames(cfg.Frames),
		compiler.OptionWithAnnotationTarget(op.annotationTarget),
	}
	if op.overlay != "" {
		overlay, code := self.readModel(ctx, op.overlay)
		if overlay == nil {
			return code
		}
		opts = append(opts, compiler.OptionWithOverlay(overlay))
	}
	if cfg.Frames || len(cfg.Libraries) > 0 {
		checker, err := self.library(cfg)
		if err != nil {
			return self.fail(err)
		}
		opts = append(opts, compiler.OptionWithInheritanceChecker(checker))
	}
	c, err := compiler.New(opts...)
	if err != nil {
		return self.fail(err)
	}

	req := &jasm.CompileRequest{Files: files, DumpTokens: op.dumpTokens, DumpTree: op.dumpTree}
	if op.source != "" {
		req.Sources = append(req.Sources, jasm.Source{Name: "source.jasm", Text: op.source})
	}
	resp, err := c.Compile(ctx, req)
	for _, w := range reporter.Warnings() {
		_, _ = fmt.Fprintf(self.stderr, "warning: %s\n", w.Error())
	}
	if err != nil {
		return self.fail(err)
	}
	if cfg.WarningsAsErrors && len(reporter.Warnings()) > 0 {
		_, _ = fmt.Fprintf(self.stderr, "%d warnings reported with %s set\n", len(reporter.Warnings()), config.KeyWarningsAsErrors)
		return exitError
	}
	for _, u := range resp.Units {
		path := op.output
		if path != "-" {
			path = filepath.Join(op.output, imageName(u.Name))
		}
		if err := self.write(ctx, path, u.Output); err != nil {
			return self.fail(err)
		}
		self.log.WithField("file", u.Name).Debug("unit written")
	}
	return exitOK
}

// imageName replaces the extension of a unit name with .jimg.
func imageName(unit string) string {
	base := filepath.Base(unit)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jimg"
}

// write stores content at path through the local FileSystem, or on
// standard output when path is -.
func (self *app) write(ctx context.Context, path string, content []byte) error {
	if path == "-" {
		_, err := self.stdout.Write(content)
		return errors.Wrap(err, "writing output")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	files, err := compiler.NewDefaultFS()
	if err != nil {
		return err
	}
	return files.Write(ctx, abs, content)
}

// readModel loads a class file or member image and reports its diagnostics.
// The path - reads standard input. A nil model comes with the exit code to
// return.
func (self *app) readModel(ctx context.Context, path string) (*bytecode.ClassModel, int) {
	b, err := self.readInput(ctx, path)
	if err != nil {
		return nil, self.fail(err)
	}
	r := classreader.Load(path, b)
	for _, w := range r.Warnings() {
		_, _ = fmt.Fprintf(self.stderr, "warning: %s\n", w.Error())
	}
	if !r.IsOk() {
		return nil, self.fail(r.Err())
	}
	return r.Get(), exitOK
}

func (self *app) readInput(ctx context.Context, path string) ([]byte, error) {
	var file jasm.File
	if path == "-" {
		b, err := io.ReadAll(self.stdin)
		if err != nil {
			return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeReadFailure, errors.Wrap(err, "reading standard input"))
		}
		file = fs.NewFileBytes(path, b, jasm.FileKindNone)
	} else {
		files, err := compiler.NewDefaultFS()
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", path)
		}
		opened, err := files.Open(ctx, abs)
		if err != nil {
			return nil, err
		}
		if len(opened) != 1 {
			return nil, exc.Newf(exc.Location{URI: path}, exc.CodeUnsupportedFileFormat, "expected one file but %s holds %d", path, len(opened))
		}
		file = opened[0]
	}
	b, err := fs.ReadAll(ctx, file)
	if err != nil {
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeReadFailure, err)
	}
	return b, nil
}

type decompileOpts struct {
	settings
	output string
}

func (self *app) decompile(ctx context.Context, args []string) int {
	op := &decompileOpts{}
	flags := self.newFlagSet("decompile")
	op.bind(flags)
	flags.StringVar(&op.output, "output", "-", "Output file or - for STDOUT.")
	flags.StringVar(&op.over.Indent, config.KeyIndent, printer.DefaultIndent, "Indentation of nested blocks.")
	if err := flags.Parse(args); err != nil {
		return self.usage(flags, err)
	}
	if flags.NArg() != 1 {
		return self.usage(flags, errors.New("decompile takes exactly one FILE"))
	}
	cfg, err := op.load(flags)
	if err != nil {
		return self.fail(err)
	}
	if op.verbose {
		self.log.SetLevel(logrus.DebugLevel)
	}

	model, code := self.readModel(ctx, flags.Arg(0))
	if model == nil {
		return code
	}
	if cfg.Frames {
		checker, err := self.library(cfg)
		if err != nil {
			return self.fail(err)
		}
		analyzer := analysis.New(checker, true)
		for _, m := range model.Methods {
			if err := analyzer.Analyze(ctx, model.Name, m); err != nil {
				return self.fail(exc.Newf(exc.Location{URI: flags.Arg(0)}, exc.CodeInvalidFlow, "%s%s: %s", m.Name, m.Descriptor, err.Error()))
			}
		}
	}
	view, err := bytecode.View(model)
	if err != nil {
		return self.fail(err)
	}
	text := printer.New(printer.OptionWithIndent(cfg.Indent), printer.OptionWithFrames(cfg.Frames)).Sprint(view)
	self.log.WithField("file", flags.Arg(0)).Debug("decompiled")
	if err := self.write(ctx, op.output, []byte(text)); err != nil {
		return self.fail(err)
	}
	return exitOK
}

func (self *app) repl(ctx context.Context, args []string) int {
	op := &settings{}
	flags := self.newFlagSet("repl")
	op.bind(flags)
	if err := flags.Parse(args); err != nil {
		return self.usage(flags, err)
	}
	cfg, err := op.load(flags)
	if err != nil {
		return self.fail(err)
	}
	tgt, err := target.Parse(cfg.Target)
	if err != nil {
		return self.fail(err)
	}
	s, err := shell.New(tgt)
	if err != nil {
		return self.fail(err)
	}
	state := liner.NewLiner()
	defer state.Close()
	if err := s.Run(ctx, state, self.stdout); err != nil {
		return self.fail(err)
	}
	return exitOK
}

// Package shell checks assembly one line at a time. Instruction lines are
// verified against the instruction registry; lines starting with a dot are
// processed as declarations.
package shell

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/instructions"
	"gopkg.microglot.org/jasm/internal/iter"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/lexer"
	"gopkg.microglot.org/jasm/internal/optional"
	"gopkg.microglot.org/jasm/internal/parser"
	"gopkg.microglot.org/jasm/internal/processor"
	"gopkg.microglot.org/jasm/internal/result"
)

const (
	URI          = "repl"
	PromptMain   = "jasm> "
	PromptCont   = "  ... "
	CommandQuit  = ":quit"
	CommandHelp  = ":help"
	codeWrapHead = ".method static repl ()V { code: {\n"
	codeWrapTail = "\n} }"
)

var keywords = []string{
	".annotation", ".class", ".enum", ".field", ".inner", ".invisible-annotation",
	".method", ".nesthost", ".nestmember", ".permittedsubclass", ".record-component",
	".signature", ".sourcefile", ".throws",
}

type Shell struct {
	registry *instructions.Registry
	target   jasm.Target
	line     int
}

func New(target jasm.Target) (*Shell, error) {
	registry, err := instructions.For(target)
	if err != nil {
		return nil, err
	}
	return &Shell{registry: registry, target: target}, nil
}

// Eval checks one input. The value describes what the input was read as.
// Diagnostics are located at the input's lines in the session.
func (self *Shell) Eval(ctx context.Context, input string) result.Result[string] {
	first := self.line + 1
	self.line = self.line + strings.Count(input, "\n") + 1
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") {
		return result.Ok("")
	}
	if strings.HasPrefix(trimmed, ".") {
		return self.declaration(ctx, input, first)
	}
	return self.instruction(ctx, input, first)
}

func (self *Shell) declaration(ctx context.Context, input string, first int) result.Result[string] {
	processed := self.process(ctx, input)
	nodes := result.New(processed.Value(), relocate(processed.Errors(), first, 1), relocate(processed.Warnings(), first, 1))
	return result.Map(nodes, func(nodes []ast.Node) string {
		out := make([]string, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, describe(n))
		}
		return strings.Join(out, ", ")
	})
}

// instruction checks a single code line inside a throwaway method. Labels
// span lines, so references to labels the line does not define are not
// reported.
func (self *Shell) instruction(ctx context.Context, input string, first int) result.Result[string] {
	processed := self.process(ctx, codeWrapHead+input+codeWrapTail)
	errs := relocate(filter(processed.Errors(), exc.CodeUndefinedLabel), first, 2)
	warnings := relocate(filter(processed.Warnings(), exc.CodeUnusedLabel), first, 2)
	described := ""
	if processed.Value().IsPresent() {
		for _, n := range processed.Get() {
			if m, ok := n.(*ast.Method); ok && m.Code != nil {
				described = describeCode(m.Code)
			}
		}
	}
	return result.New(optional.Some(described), errs, warnings)
}

func (self *Shell) process(ctx context.Context, text string) result.Result[[]ast.Node] {
	tokens := lexer.Tokenize(ctx, URI, text)
	tree := result.Chain(tokens, func(tokens []*jasm.Token) result.Result[[]ast.Node] {
		return parser.Parse(ctx, URI, tokens)
	})
	return result.Chain(tree, func(nodes []ast.Node) result.Result[[]ast.Node] {
		return processor.Process(ctx, nodes, self.target)
	})
}

// relocate moves diagnostics from the evaluated text, where the input
// starts on line start, to the session lines beginning at first. Positions
// outside the input point at its first column.
func relocate(in []exc.Exception, first int, start int) []exc.Exception {
	var out []exc.Exception
	for _, e := range in {
		loc := e.Location()
		if loc.IsValid() {
			loc.Line = first + loc.Line - start
			if loc.Line < first {
				loc = jasm.Location{URI: URI, Line: first, Column: 1}
			}
		}
		out = append(out, exc.New(loc, e.Code(), e.Message()))
	}
	return out
}

func filter(in []exc.Exception, drop string) []exc.Exception {
	var out []exc.Exception
	for _, e := range in {
		if e.Code() != drop {
			out = append(out, e)
		}
	}
	return out
}

func describe(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Type:
		return "class " + v.Name.Content()
	case *ast.Field:
		return fmt.Sprintf("field %s %s", v.Name.Content(), v.Descriptor.Content())
	case *ast.Method:
		return fmt.Sprintf("method %s %s", v.Name.Content(), v.Descriptor.Content())
	}
	return n.Kind().String()
}

func describeCode(code *ast.Code) string {
	for _, e := range code.Elements {
		switch v := e.(type) {
		case *ast.Label:
			return "label " + v.Name.Content()
		case *ast.Instruction:
			return "instruction " + v.Mnemonic.Content()
		}
	}
	return ""
}

// Incomplete reports whether text opens more braces than it closes, in
// which case the input continues on the next line.
func Incomplete(ctx context.Context, text string) bool {
	tokens := lexer.Tokenize(ctx, URI, text)
	if !tokens.Value().IsPresent() {
		return false
	}
	braces, err := iter.Collect(ctx, iter.NewIteratorFilter(iter.NewSlice(tokens.Get()), iter.FilterFunc[*jasm.Token](isBrace)))
	if err != nil {
		return false
	}
	depth := 0
	for _, t := range braces {
		if t.Content == "{" {
			depth = depth + 1
			continue
		}
		depth = depth - 1
	}
	return depth > 0
}

func isBrace(ctx context.Context, t *jasm.Token) bool {
	return t.Is(jasm.TokenKindSymbol, "{") || t.Is(jasm.TokenKindSymbol, "}")
}

// Complete offers mnemonics and keywords starting with the last word of
// line.
func (self *Shell) Complete(line string) []string {
	start := strings.LastIndexAny(line, " \t") + 1
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}
	candidates := keywords
	if start > 0 || !strings.HasPrefix(word, ".") {
		candidates = self.registry.Mnemonics()
	}
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			out = append(out, head+c)
		}
	}
	sort.Strings(out)
	return out
}

// Run reads inputs from state until end of input or the quit command and
// writes the outcome of each to out.
func (self *Shell) Run(ctx context.Context, state *liner.State, out io.Writer) error {
	state.SetCtrlCAborts(true)
	state.SetCompleter(self.Complete)
	for {
		input, ok, err := self.read(ctx, state)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch strings.TrimSpace(input) {
		case CommandQuit:
			return nil
		case CommandHelp:
			_, _ = fmt.Fprintln(out, "enter an instruction, a label or a declaration starting with a dot; :quit exits")
			continue
		}
		if strings.TrimSpace(input) != "" {
			state.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		if err := Report(out, self.Eval(ctx, input)); err != nil {
			return err
		}
	}
}

func (self *Shell) read(ctx context.Context, state *liner.State) (string, bool, error) {
	var b strings.Builder
	for {
		prompt := PromptMain
		if b.Len() > 0 {
			prompt = PromptCont
		}
		line, err := state.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false, nil
		}
		if err != nil {
			return "", false, errors.Wrap(err, "reading input")
		}
		if b.Len() > 0 {
			_ = b.WriteByte('\n')
		}
		_, _ = b.WriteString(line)
		if !Incomplete(ctx, b.String()) {
			return b.String(), true, nil
		}
	}
}

// Report writes every diagnostic of r, then "ok" and the description when
// r holds no errors.
func Report(out io.Writer, r result.Result[string]) error {
	var b strings.Builder
	for _, e := range r.Errors() {
		_, _ = fmt.Fprintf(&b, "error: %s\n", e.Error())
	}
	for _, w := range r.Warnings() {
		_, _ = fmt.Fprintf(&b, "warning: %s\n", w.Error())
	}
	if r.IsOk() && r.Get() != "" {
		_, _ = fmt.Fprintf(&b, "ok: %s\n", r.Get())
	}
	_, err := io.WriteString(out, b.String())
	return errors.Wrap(err, "writing report")
}

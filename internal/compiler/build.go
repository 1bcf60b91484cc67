package compiler

import (
	"context"
	"strings"

	"gopkg.microglot.org/jasm/internal/analysis"
	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/inheritance"
	"gopkg.microglot.org/jasm/internal/instructions"
	"gopkg.microglot.org/jasm/internal/optional"
	"gopkg.microglot.org/jasm/internal/result"
	"gopkg.microglot.org/jasm/internal/transformer"
)

type annotationTargetKind uint8

const (
	annotateClass annotationTargetKind = iota
	annotateField
	annotateMethod
)

// annotationTarget is a parsed annotation target path: class,
// field:<name>:<descriptor> or method:<name>:<descriptor>.
type annotationTarget struct {
	kind       annotationTargetKind
	name       string
	descriptor string
}

func parseAnnotationTarget(path string) (annotationTarget, bool) {
	if path == "class" {
		return annotationTarget{kind: annotateClass}, true
	}
	parts := strings.SplitN(path, ":", 3)
	if len(parts) != 3 || parts[1] == "" {
		return annotationTarget{}, false
	}
	switch parts[0] {
	case "field":
		if !descriptor.IsValidFieldDescriptor(parts[2]) {
			return annotationTarget{}, false
		}
		return annotationTarget{kind: annotateField, name: parts[1], descriptor: parts[2]}, true
	case "method":
		if !descriptor.IsValidMethodDescriptor(parts[2]) {
			return annotationTarget{}, false
		}
		return annotationTarget{kind: annotateMethod, name: parts[1], descriptor: parts[2]}, true
	}
	return annotationTarget{}, false
}

// configure checks the options against the kind of declaration being
// compiled.
func (self *Compiler) configure(uri string, node ast.Node) (annotationTarget, []exc.Exception) {
	loc := exc.Location{URI: uri}
	var errs []exc.Exception
	if self.Frames && self.Checker == nil {
		errs = append(errs, exc.New(loc, exc.CodeCheckerRequired, "computing frames requires an inheritance checker"))
	}
	var target annotationTarget
	switch node.(type) {
	case *ast.Field:
		if self.Overlay == nil {
			errs = append(errs, exc.New(loc, exc.CodeOverlayRequired, "overlay required for non-type declaration"))
		}
	case *ast.Annotation:
		if self.Overlay == nil {
			errs = append(errs, exc.New(loc, exc.CodeOverlayRequired, "overlay required for non-type declaration"))
		}
		if self.AnnotationTarget == "" {
			errs = append(errs, exc.New(loc, exc.CodeAnnotationTargetRequired, "annotation target required for annotation declaration"))
			break
		}
		t, ok := parseAnnotationTarget(self.AnnotationTarget)
		if !ok {
			errs = append(errs, exc.Newf(loc, exc.CodeInvalidAnnotationTarget, "%q is not an annotation target", self.AnnotationTarget))
		}
		target = t
	}
	return target, errs
}

func (self *Compiler) model() *bytecode.ClassModel {
	var model *bytecode.ClassModel
	if self.Overlay != nil {
		model = self.Overlay.Clone()
	} else {
		model = &bytecode.ClassModel{Version: bytecode.DefaultVersion}
	}
	if self.Version != 0 {
		model.Version = self.Version
	}
	return model
}

// build lowers the main declaration of a unit into a class model and
// computes the stack sizes of every method it compiled.
func (self *Compiler) build(ctx context.Context, uri string, node ast.Node) result.Result[*bytecode.ClassModel] {
	target, errs := self.configure(uri, node)
	if len(errs) > 0 {
		return result.Err[*bytecode.ClassModel](errs...)
	}
	registry, err := instructions.For(self.Target)
	if err != nil {
		return result.Err[*bytecode.ClassModel](err)
	}
	reporter := exc.NewReporter(nil)
	unit := &unitBuilder{
		uri:       uri,
		model:     self.model(),
		overlay:   self.Overlay != nil,
		target:    target,
		locations: locations(node),
		reporter:  reporter,
	}
	transformed := transformer.Transform(ctx, []ast.Node{node}, registry, rootBuilder{unit})
	if !transformed.IsOk() {
		return result.New(optional.None[*bytecode.ClassModel](), append(transformed.Errors(), reporter.Reported()...), append(transformed.Warnings(), reporter.Warnings()...))
	}

	analyzer := analysis.New(self.Checker, self.Frames)
	owner := unit.model.Name
	if owner == "" {
		owner = inheritance.Object
	}
	for _, m := range unit.compiled {
		if m.Code == nil {
			continue
		}
		loc := unit.location("method", m.Name, m.Descriptor)
		if err := analyzer.Analyze(ctx, owner, m); err != nil {
			if ctx.Err() != nil {
				return result.Err[*bytecode.ClassModel](exc.WrapUnknown(loc, ctx.Err()))
			}
			_ = reporter.Report(exc.Wrap(loc, exc.CodeInvalidFlow, err))
			continue
		}
		if _, err := bytecode.NewLayout(m.Code); err != nil {
			_ = reporter.Report(exc.Wrap(loc, exc.CodeBranchOutOfRange, err))
		}
	}
	if len(reporter.Reported()) > 0 {
		return result.New(optional.None[*bytecode.ClassModel](), reporter.Reported(), append(transformed.Warnings(), reporter.Warnings()...))
	}
	return result.Ok(unit.model, append(transformed.Warnings(), reporter.Warnings()...)...)
}

func memberKey(kind string, name string, desc string) string {
	return kind + ":" + name + ":" + desc
}

// locations maps every member of the declaration to its source location.
func locations(node ast.Node) map[string]exc.Location {
	out := make(map[string]exc.Location)
	var add func(n ast.Node)
	add = func(n ast.Node) {
		switch d := n.(type) {
		case *ast.Method:
			out[memberKey("method", d.Name.Content(), d.Descriptor.Content())] = d.Location()
		case *ast.Field:
			out[memberKey("field", d.Name.Content(), d.Descriptor.Content())] = d.Location()
		case *ast.Type:
			for _, m := range d.Members {
				add(m)
			}
		}
	}
	add(node)
	return out
}

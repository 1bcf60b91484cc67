// Package target normalizes compile targets and selects the instruction set
// a unit is assembled for.
package target

import (
	"net/url"
	"path/filepath"
	"strings"

	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/jasm"
)

// Normalize processes a compile target and converts it into a standard form.
//
// Targets may be any valid URI or file path. File paths and file URIs are
// converted to an absolute form. All non-file URIs are left as-is with the
// expectation that they will be handled by some other implementation.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return target
}

// Parse reads an instruction set name. The empty name selects the JVM.
func Parse(name string) (jasm.Target, error) {
	switch strings.ToLower(name) {
	case "", "jvm":
		return jasm.TargetJVM, nil
	case "dalvik":
		return jasm.TargetDalvik, nil
	}
	return 0, exc.Newf(exc.Location{}, exc.CodeUnsupportedTarget, "unknown target %q, expected jvm or dalvik", name)
}

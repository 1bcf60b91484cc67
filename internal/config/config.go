// Package config reads the optional project file that supplies defaults for
// command line flags.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/target"
)

// FileName is the project file looked up in the working directory when no
// file is named explicitly.
const FileName = "jasm.yaml"

// Keys of the project file. Command line flags share these names.
const (
	KeyTarget           = "target"
	KeyVersion          = "version"
	KeyIndent           = "indent"
	KeyLibraries        = "libraries"
	KeyConcurrency      = "concurrency"
	KeyFrames           = "frames"
	KeyWarningsAsErrors = "warnings-as-errors"
)

type Config struct {
	Target           string   `yaml:"target"`
	Version          uint16   `yaml:"version"`
	Indent           string   `yaml:"indent"`
	Libraries        []string `yaml:"libraries"`
	Concurrency      int      `yaml:"concurrency"`
	Frames           bool     `yaml:"frames"`
	WarningsAsErrors bool     `yaml:"warnings-as-errors"`
}

func Default() Config {
	return Config{
		Target:  "jvm",
		Version: bytecode.DefaultVersion,
		Indent:  "  ",
	}
}

// Load reads path on top of the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Find loads FileName from dir when it exists and returns the defaults
// otherwise.
func Find(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	return Load(path)
}

// Parse decodes a project file. Unknown keys are rejected so that typos
// do not silently fall back to defaults.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decoding yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (self Config) Validate() error {
	if _, err := target.Parse(self.Target); err != nil {
		return err
	}
	if self.Version < 45 {
		return exc.Newf(exc.Location{}, exc.CodeInvalidConfiguration, "class file version %d is older than 45", self.Version)
	}
	if self.Concurrency < 0 {
		return exc.Newf(exc.Location{}, exc.CodeInvalidConfiguration, "concurrency must not be negative but is %d", self.Concurrency)
	}
	return nil
}

// Merge returns self with every value of over whose key changed reports
// as set. Libraries are appended rather than replaced.
func (self Config) Merge(over Config, changed func(key string) bool) Config {
	out := self
	out.Libraries = append([]string(nil), self.Libraries...)
	if changed(KeyTarget) {
		out.Target = over.Target
	}
	if changed(KeyVersion) {
		out.Version = over.Version
	}
	if changed(KeyIndent) {
		out.Indent = over.Indent
	}
	if changed(KeyLibraries) {
		out.Libraries = append(out.Libraries, over.Libraries...)
	}
	if changed(KeyConcurrency) {
		out.Concurrency = over.Concurrency
	}
	if changed(KeyFrames) {
		out.Frames = over.Frames
	}
	if changed(KeyWarningsAsErrors) {
		out.WarningsAsErrors = over.WarningsAsErrors
	}
	return out
}

// Marshal renders the configuration as a project file.
func (self Config) Marshal() ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(self); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	return b.Bytes(), nil
}

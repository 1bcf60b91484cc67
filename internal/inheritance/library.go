package inheritance

import (
	"context"
	"path"
	"sync"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/bytecode/classreader"
	"gopkg.microglot.org/jasm/internal/fs"
	"gopkg.microglot.org/jasm/internal/jasm"
)

type typeInfo struct {
	super      string
	interfaces []string
	isItf      bool
}

// Library resolves types from class files and images found under a set of
// library folders. Lookups are cached and safe for concurrent use.
type Library struct {
	fs    jasm.FileSystem
	roots []string
	lock  sync.Mutex
	cache map[string]*typeInfo
}

var _ Checker = (*Library)(nil)

func NewLibrary(files jasm.FileSystem, roots ...string) *Library {
	return &Library{
		fs:    files,
		roots: roots,
		cache: make(map[string]*typeInfo),
	}
}

// Add registers a type without reading it from disk. The compiler adds the
// class being assembled this way.
func (self *Library) Add(model *bytecode.ClassModel) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.cache[model.Name] = infoOf(model)
}

func infoOf(model *bytecode.ClassModel) *typeInfo {
	return &typeInfo{
		super:      model.Super,
		interfaces: append([]string(nil), model.Interfaces...),
		isItf:      model.Access.Has(bytecode.AccInterface),
	}
}

func (self *Library) lookup(ctx context.Context, name string) (*typeInfo, error) {
	if name == Object {
		return &typeInfo{}, nil
	}
	self.lock.Lock()
	info, ok := self.cache[name]
	self.lock.Unlock()
	if ok {
		return info, nil
	}
	model, err := self.load(ctx, name)
	if err != nil {
		return nil, err
	}
	info = infoOf(model)
	self.lock.Lock()
	self.cache[name] = info
	self.lock.Unlock()
	return info, nil
}

func (self *Library) load(ctx context.Context, name string) (*bytecode.ClassModel, error) {
	for _, root := range self.roots {
		for _, ext := range []string{".class", ".jimg"} {
			files, err := self.fs.Open(ctx, path.Join(root, name+ext))
			if err != nil || len(files) != 1 {
				continue
			}
			b, err := fs.ReadAll(ctx, files[0])
			if err != nil {
				return nil, errors.Wrapf(err, "loading %s", name)
			}
			r := classreader.Load(files[0].Path(ctx), b)
			if !r.IsOk() {
				return nil, errors.Wrapf(r.Err(), "loading %s", name)
			}
			return r.Get(), nil
		}
	}
	return nil, errors.Errorf("type %s was not found in the library", name)
}

// supers lists name followed by its superclasses up to Object.
func (self *Library) supers(ctx context.Context, name string) ([]string, error) {
	out := []string{name}
	seen := map[string]bool{name: true}
	for name != Object {
		info, err := self.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		name = info.super
		if name == "" {
			name = Object
		}
		if seen[name] {
			return nil, errors.Errorf("type %s is its own superclass", name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

func (self *Library) IsSubclassOf(ctx context.Context, child string, parent string) (bool, error) {
	if child == parent || parent == Object {
		return true, nil
	}
	chain, err := self.supers(ctx, child)
	if err != nil {
		return false, err
	}
	visited := make(map[string]bool)
	pending := []string{}
	for _, c := range chain {
		if c == parent {
			return true, nil
		}
		pending = append(pending, c)
	}
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if visited[name] || name == Object {
			continue
		}
		visited[name] = true
		info, err := self.lookup(ctx, name)
		if err != nil {
			return false, err
		}
		for _, i := range info.interfaces {
			if i == parent {
				return true, nil
			}
			pending = append(pending, i)
		}
	}
	return false, nil
}

// CommonSuperclass returns the closest class both types extend. Interfaces
// merge to Object.
func (self *Library) CommonSuperclass(ctx context.Context, a string, b string) (string, error) {
	if a == b {
		return a, nil
	}
	for _, name := range []string{a, b} {
		info, err := self.lookup(ctx, name)
		if err != nil {
			return "", err
		}
		if info.isItf {
			return Object, nil
		}
	}
	chainA, err := self.supers(ctx, a)
	if err != nil {
		return "", err
	}
	chainB, err := self.supers(ctx, b)
	if err != nil {
		return "", err
	}
	inA := make(map[string]bool, len(chainA))
	for _, c := range chainA {
		inA[c] = true
	}
	for _, c := range chainB {
		if inA[c] {
			return c, nil
		}
	}
	return Object, nil
}

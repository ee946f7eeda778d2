package parser

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/samber/lo"
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/lexer"
	"golang.org/x/exp/slices"
)

// File is a parsed source file. Every file is an independent program.
type File struct {
	Name    string
	Source  string
	Program *ast.Program
}

type Loader struct {
	root  fs.FS
	Cache map[string]*File
}

func NewLoader(root fs.FS) *Loader {
	return &Loader{
		root:  root,
		Cache: make(map[string]*File),
	}
}

// LoadFile reads and parses a single source file. Files that were already
// loaded are returned from the cache.
func (ld *Loader) LoadFile(name string) (*File, error) {
	if f, ok := ld.Cache[name]; ok {
		return f, nil
	}
	f, err := ParseFile(ld.root, name)
	if err != nil {
		return f, err
	}
	ld.Cache[name] = f
	return f, nil
}

// LoadDir parses every source file directly inside dir, in name order.
// It stops at the first file that fails to load and returns the files
// loaded so far together with the error. A file that was read but failed
// to parse is the last element of the result.
func (ld *Loader) LoadDir(dir string) ([]*File, error) {
	entries, err := fs.ReadDir(ld.root, dir)
	if err != nil {
		return nil, err
	}
	names := lo.FilterMap(entries, func(entry fs.DirEntry, _ int) (string, bool) {
		if entry.IsDir() || path.Ext(entry.Name()) != lexer.Extension {
			return "", false
		}
		return path.Join(dir, entry.Name()), true
	})
	if len(names) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", lexer.Extension, dir)
	}
	slices.Sort(names)
	files := make([]*File, 0, len(names))
	for _, name := range names {
		f, err := ld.LoadFile(name)
		if f != nil {
			files = append(files, f)
		}
		if err != nil {
			return files, err
		}
	}
	return files, nil
}

// Load loads name as a directory if it is one, or as a single file.
func (ld *Loader) Load(name string) ([]*File, error) {
	info, err := fs.Stat(ld.root, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ld.LoadDir(name)
	}
	f, err := ld.LoadFile(name)
	if err != nil {
		if f != nil {
			return []*File{f}, err
		}
		return nil, err
	}
	return []*File{f}, nil
}

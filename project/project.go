// Package project locates the Java module and the application entry point
// a source file belongs to.
package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dhamidi/jfxbuilder/java"
)

const moduleInfoFile = "module-info.java"

// Module is a Java module found by its module-info.java.
type Module struct {
	Name       string
	SrcDir     string
	ModuleInfo string
	Requires   []string // module names this module requires
}

// Reader is the file access the locator needs.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Locator answers project-structure questions about source files.
type Locator struct {
	Files Reader
}

func NewLocator(files Reader) *Locator {
	if files == nil {
		files = osReader{}
	}
	return &Locator{Files: files}
}

// FindModule walks up from the directory of path to the nearest
// module-info.java. It returns nil when there is none.
func (l *Locator) FindModule(path string) (*Module, error) {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	for {
		info := filepath.Join(dir, moduleInfoFile)
		if data, err := l.Files.ReadFile(info); err == nil {
			src := java.ScanSource(data)
			return &Module{
				Name:       src.Module,
				SrcDir:     dir,
				ModuleInfo: info,
				Requires:   src.Requires,
			}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Requires lists the modules required by the module enclosing path.
func (l *Locator) Requires(ctx context.Context, path string) ([]string, error) {
	m, err := l.FindModule(path)
	if err != nil || m == nil {
		return nil, err
	}
	return m.Requires, nil
}

// FindMainClass returns the entry point nearest to path: the file itself,
// then its siblings, then the files of each enclosing package up to the
// source root. When no entry point exists the file's own top-level class
// is used. It returns nil when path declares no type.
func (l *Locator) FindMainClass(ctx context.Context, path string) (*java.MainClass, error) {
	data, err := l.Files.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	src := java.ScanSource(data)
	if len(src.TopLevelTypes) == 0 {
		return nil, nil
	}
	if src.EntryPoint {
		return &java.MainClass{PackageName: src.Package, FilePath: path}, nil
	}

	dir := filepath.Dir(path)
	root := sourceRoot(dir, src.Package)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if main := l.entryPointIn(dir, path); main != nil {
			return main, nil
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return &java.MainClass{PackageName: src.Package, FilePath: path}, nil
}

func (l *Locator) entryPointIn(dir, skip string) *java.MainClass {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".java" && e.Name() != moduleInfoFile {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		p := filepath.Join(dir, name)
		if p == skip {
			continue
		}
		data, err := l.Files.ReadFile(p)
		if err != nil {
			continue
		}
		if src := java.ScanSource(data); src.EntryPoint {
			return &java.MainClass{PackageName: src.Package, FilePath: p}
		}
	}
	return nil
}

// sourceRoot strips the package path from dir: "src/com/example" with
// package "com.example" yields "src". A mismatch yields dir.
func sourceRoot(dir, pkg string) string {
	if pkg == "" {
		return dir
	}
	parts := strings.Split(pkg, ".")
	root := dir
	for i := len(parts) - 1; i >= 0; i-- {
		if filepath.Base(root) != parts[i] {
			return dir
		}
		root = filepath.Dir(root)
	}
	return root
}

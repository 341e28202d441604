package builder

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/format"
	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/override"
)

var engineLog = commonlog.GetLogger("jfxbuilder.engine")

// FileStore persists generated sources. WriteFile is expected to keep the
// language service in sync with what it wrote.
type FileStore interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	MkdirAll(path string) error
	Exists(path string) bool
}

// MainClassFinder locates the top-level class enclosing a source file.
// It returns nil and no error when there is none.
type MainClassFinder interface {
	FindMainClass(ctx context.Context, path string) (*java.MainClass, error)
}

// EditApplier applies text edits to open documents or files.
type EditApplier interface {
	ApplyEdit(ctx context.Context, edit *langsvc.WorkspaceEdit) error
}

// ModuleFinder reports the modules required by the project a file belongs to.
type ModuleFinder interface {
	Requires(ctx context.Context, path string) ([]string, error)
}

type Options struct {
	MaxDepth       int
	BuilderDir     string
	RepairInterval time.Duration
	RepairCount    int
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:       100,
		BuilderDir:     "jfxbuilder",
		RepairInterval: DefaultRepairInterval,
		RepairCount:    DefaultRepairCount,
	}
}

// Request names a construction expression by file and zero-based line.
type Request struct {
	Path string
	Line int
}

type Result struct {
	Target         string
	BuilderPath    string
	Methods        int
	Constructors   int
	TypeParameters string
	// Skipped is set when no enclosing class was found and nothing was
	// written.
	Skipped bool
	// LinesAdded counts lines inserted above the construction by the
	// import of the builder.
	LinesAdded int
}

// Engine runs the generation pipeline. Starting a run cancels the
// hierarchy query of the previous run, if any. The cancellation is
// advisory: a query that has already answered is still processed, and a
// query already on the wire is only abandoned, not interrupted.
type Engine struct {
	Service     langsvc.Service
	Registry    *override.Registry
	Files       FileStore
	Edits       EditApplier
	MainClasses MainClassFinder
	Modules     ModuleFinder
	Options     Options

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// Cancel abandons the in-flight hierarchy query, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) beginQuery(ctx context.Context) (context.Context, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	qctx, cancel := context.WithCancel(ctx)
	e.gen++
	gen := e.gen
	e.cancel = cancel
	return qctx, func() {
		e.mu.Lock()
		if e.gen == gen {
			e.cancel = nil
		}
		e.mu.Unlock()
		cancel()
	}
}

// Generate creates the builder for the construction at req and rewrites
// the construction to use it.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if !strings.EqualFold(filepath.Ext(req.Path), ".java") {
		return nil, errors.WithHint(errors.Wrapf(ErrNotJava, "%s", req.Path), "open a .java file")
	}
	data, err := e.Files.ReadFile(req.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", req.Path)
	}
	text := string(data)
	lines := strings.Split(text, "\n")
	if req.Line < 0 || req.Line >= len(lines) {
		return nil, errors.Wrapf(ErrNotConstruction, "line %d of %s", req.Line+1, req.Path)
	}
	construction, ok := java.FindConstruction(req.Line, strings.TrimSuffix(lines[req.Line], "\r"))
	if !ok {
		return nil, errors.WithHint(errors.Wrapf(ErrNotConstruction, "line %d of %s", req.Line+1, req.Path),
			"place the cursor on a line containing new SomeClass(...)")
	}
	target := construction.SimpleName
	uri := langsvc.PathToURI(req.Path)

	if err := e.Service.SyncDocument(ctx, uri, text); err != nil {
		return nil, errors.Wrapf(err, "syncing %s", req.Path)
	}

	item, err := e.typeHierarchy(ctx, uri, construction)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.Wrapf(ErrClassNotFound, "%s", construction.QualifiedName)
	}

	collector := &Collector{Symbols: e.Service, Registry: e.Registry}
	collection, err := collector.Collect(ctx, item, target)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, errors.Wrapf(err, "collecting members of %s", target)
	}
	resolution := ResolveTypeParameters(target, collection.Constructors, collection.Methods, e.Registry)

	main, err := e.MainClasses.FindMainClass(ctx, req.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "finding main class of %s", req.Path)
	}
	if main == nil {
		engineLog.Info("main class not found, skipping", "path", req.Path, "target", target)
		return &Result{Target: target, Skipped: true}, nil
	}

	builderPackage := e.builderPackage(main.PackageName)
	edit, added := RewriteEdit(uri, text, construction, builderPackage)
	if err := e.Edits.ApplyEdit(ctx, edit); err != nil {
		return nil, errors.Wrapf(err, "rewriting construction of %s", target)
	}

	model := &java.BuilderModel{
		ClassName:            target,
		PackageName:          builderPackage,
		TypeParameters:       resolution.Clause,
		Methods:              resolution.Methods,
		Constructors:         collection.Constructors,
		ExtraConstructors:    e.registry().ExtraConstructors(target),
		MethodTypeParameters: e.methodTypeParameters(target, resolution.Methods),
		ExtraImports:         e.imports(ctx, target, collection.Visited, main.FilePath),
	}

	var draft bytes.Buffer
	if err := format.NewBuilderEncoder(&draft).Encode(model); err != nil {
		return nil, errors.Wrapf(err, "rendering %s", model.BuilderName())
	}

	dir := filepath.Join(filepath.Dir(main.FilePath), e.builderDir())
	if err := e.Files.MkdirAll(dir); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	path := filepath.Join(dir, model.BuilderName()+".java")
	if err := e.Files.WriteFile(ctx, path, draft.Bytes()); err != nil {
		return nil, errors.Wrapf(err, "writing %s", path)
	}
	engineLog.Info("builder draft written", "path", path, "methods", len(model.Methods))

	repairer := &Repairer{
		Diagnostics: e.Service,
		Files:       e.Files,
		Interval:    e.Options.RepairInterval,
		Count:       e.Options.RepairCount,
	}
	repairer.Repair(ctx, path, draft.String())

	return &Result{
		Target:         target,
		BuilderPath:    path,
		Methods:        len(model.Methods),
		Constructors:   len(model.Constructors),
		TypeParameters: resolution.Clause,
		LinesAdded:     added,
	}, nil
}

func (e *Engine) typeHierarchy(ctx context.Context, uri string, c *java.Construction) (*java.ClassHierarchyItem, error) {
	qctx, done := e.beginQuery(ctx)
	defer done()
	pos := langsvc.Position{Line: c.Line, Character: langsvc.UTF16Column(c.Text, c.NameColumn)}
	item, err := e.Service.TypeHierarchy(qctx, uri, pos, langsvc.DirectionParents, e.maxDepth())
	if err != nil {
		if qctx.Err() != nil {
			engineLog.Debug("hierarchy query cancelled", "uri", uri, "line", c.Line)
			return nil, ErrCancelled
		}
		return nil, errors.Wrapf(err, "type hierarchy of %s", c.QualifiedName)
	}
	return item, nil
}

// GenerateAll generates a builder for every construction in path, last
// line first so that rewriting one expression never moves another.
// Targets without members are logged and skipped.
func (e *Engine) GenerateAll(ctx context.Context, path string) ([]*Result, error) {
	data, err := e.Files.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	constructions := java.FindConstructions(data)
	var results []*Result
	shift := 0
	for i := len(constructions) - 1; i >= 0; i-- {
		c := constructions[i]
		result, err := e.Generate(ctx, Request{Path: path, Line: c.Line + shift})
		switch {
		case errors.IsAny(err, ErrNoMembers, ErrClassNotFound):
			engineLog.Info("skipping construction", "path", path, "line", c.Line+1, "class", c.SimpleName, "reason", err)
			continue
		case err != nil:
			return results, err
		}
		shift += result.LinesAdded
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) registry() *override.Registry {
	if e.Registry == nil {
		return override.New(override.Tables{})
	}
	return e.Registry
}

func (e *Engine) methodTypeParameters(target string, methods []java.MethodSignature) map[string]string {
	clauses := make(map[string]string)
	for _, m := range methods {
		if clause, ok := e.registry().MethodTypeParameter(target, m.MethodName); ok {
			clauses[m.MethodName] = clause
		}
	}
	return clauses
}

// imports lists per-class imports, then imports tied to visited ancestors,
// then imports for optional JavaFX modules the project requires.
func (e *Engine) imports(ctx context.Context, target string, visited []string, mainPath string) []string {
	reg := e.registry()
	imports := reg.ExtraImports(target)
	for _, ancestor := range visited {
		imports = append(imports, reg.AncestorImports(ancestor)...)
	}
	if e.Modules != nil {
		modules, err := e.Modules.Requires(ctx, mainPath)
		if err != nil {
			engineLog.Warning("reading module requirements failed", "path", mainPath, "error", err)
		}
		for _, m := range modules {
			if imp, ok := format.ModuleImports[m]; ok {
				imports = append(imports, imp)
			}
		}
	}
	return imports
}

func (e *Engine) builderPackage(mainPackage string) string {
	dir := e.builderDir()
	if mainPackage == "" {
		return dir
	}
	return mainPackage + "." + dir
}

func (e *Engine) builderDir() string {
	if e.Options.BuilderDir == "" {
		return "jfxbuilder"
	}
	return e.Options.BuilderDir
}

func (e *Engine) maxDepth() int {
	if e.Options.MaxDepth <= 0 {
		return 100
	}
	return e.Options.MaxDepth
}

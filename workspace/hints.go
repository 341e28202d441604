package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
)

const (
	HintSource   = "jfxbuilder"
	HintCode     = "builder-available"
	hintMessage  = "Can generate builder class"
	sceneSegment = "javafx.scene"
)

// Hint marks a construction whose class has no builder yet.
type Hint struct {
	Path          string
	Range         langsvc.Range
	Class         string
	TypeArguments []string
	Message       string
}

// Diagnostic renders the hint as an informational diagnostic.
func (h Hint) Diagnostic() langsvc.Diagnostic {
	return langsvc.Diagnostic{
		Range:    h.Range,
		Severity: 4,
		Code:     HintCode,
		Source:   HintSource,
		Message:  h.Message,
	}
}

// MainClassFinder locates the class that owns the builder directory.
type MainClassFinder interface {
	FindMainClass(ctx context.Context, path string) (*java.MainClass, error)
}

// HintScanner finds constructions of JavaFX scene classes that could be
// replaced by a builder.
type HintScanner struct {
	Definitions langsvc.DefinitionService
	Syncer      langsvc.DocumentSyncer
	Files       *Store
	MainClasses MainClassFinder
	BuilderDir  string
	Workers     int
}

// Scan reports a hint for every construction in path whose type is
// defined in a javafx.scene package and whose builder does not exist.
// Lines whose definition lookup fails are skipped.
func (s *HintScanner) Scan(ctx context.Context, path string) ([]Hint, error) {
	data, err := s.Files.ReadFile(path)
	if err != nil {
		return nil, err
	}
	constructions := java.FindConstructions(data)
	if len(constructions) == 0 {
		return nil, nil
	}

	uri := langsvc.PathToURI(path)
	if s.Syncer != nil {
		if err := s.Syncer.SyncDocument(ctx, uri, string(data)); err != nil {
			return nil, errors.Wrapf(err, "syncing %s", path)
		}
	}

	main, err := s.MainClasses.FindMainClass(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "finding main class of %s", path)
	}
	if main == nil {
		return nil, nil
	}
	builderDir := filepath.Join(filepath.Dir(main.FilePath), s.builderDir())

	var hints []Hint
	for _, c := range constructions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos := langsvc.Position{Line: c.Line, Character: langsvc.UTF16Column(c.Text, c.NameColumn)}
		locs, err := s.Definitions.TypeDefinition(ctx, uri, pos)
		if err != nil {
			log.Debug("type definition failed", "path", path, "line", c.Line+1, "error", err)
			continue
		}
		if len(locs) == 0 || !strings.Contains(locs[0].URI, sceneSegment) {
			continue
		}
		if s.Files.Exists(filepath.Join(builderDir, c.SimpleName+"Builder.java")) {
			continue
		}

		start := c.NameColumn - 1
		end := start + len(c.SimpleName)
		message := hintMessage
		if len(c.TypeArguments) > 0 {
			message += " (Type parameters: " + strings.Join(c.TypeArguments, ", ") + ")"
		}
		hints = append(hints, Hint{
			Path: path,
			Range: langsvc.Range{
				Start: langsvc.Position{Line: c.Line, Character: langsvc.UTF16Column(c.Text, start)},
				End:   langsvc.Position{Line: c.Line, Character: langsvc.UTF16Column(c.Text, end)},
			},
			Class:         c.SimpleName,
			TypeArguments: c.TypeArguments,
			Message:       message,
		})
	}
	return hints, nil
}

// ScanTree scans every Java source under root, skipping hidden
// directories and builder directories. Files that fail to scan are
// logged and left out of the result.
func (s *HintScanner) ScanTree(ctx context.Context, root string) (map[string][]Hint, error) {
	paths, err := JavaFiles(root, s.builderDir())
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	result := make(map[string][]Hint)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for _, path := range paths {
		g.Go(func() error {
			hints, err := s.Scan(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warning("scanning for hints failed", "path", path, "error", err)
				return nil
			}
			if len(hints) == 0 {
				return nil
			}
			mu.Lock()
			result[path] = hints
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// JavaFiles lists the .java files under root in lexical order, skipping
// hidden directories and directories named like one of skipDirs.
func JavaFiles(root string, skipDirs ...string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name(), skipDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".java" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	sort.Strings(paths)
	return paths, nil
}

func skipDir(name string, skipDirs []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, skip := range skipDirs {
		if name == skip {
			return true
		}
	}
	return false
}

func (s *HintScanner) builderDir() string {
	if s.BuilderDir == "" {
		return "jfxbuilder"
	}
	return s.BuilderDir
}

func (s *HintScanner) workers() int {
	if s.Workers <= 0 {
		return 4
	}
	return s.Workers
}

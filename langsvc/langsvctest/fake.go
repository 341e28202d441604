// Package langsvctest provides an in-memory language service for tests.
package langsvctest

import (
	"context"
	"sync"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
)

// Service is a scripted langsvc.Service. Zero values answer with nothing.
type Service struct {
	// HierarchyFunc answers TypeHierarchy. A nil func returns Hierarchy.
	HierarchyFunc func(ctx context.Context, uri string, pos langsvc.Position) (*java.ClassHierarchyItem, error)
	Hierarchy     *java.ClassHierarchyItem

	// Symbols maps a class URI to its outline. SymbolErrors fails a URI.
	Symbols      map[string][]langsvc.Symbol
	SymbolErrors map[string]error

	// DiagnosticsFunc computes diagnostics from the last synced text of a
	// document, the way a compiler would after a change.
	DiagnosticsFunc func(uri, text string) []langsvc.Diagnostic

	// DefinitionFunc answers TypeDefinition.
	DefinitionFunc func(uri string, pos langsvc.Position) []langsvc.Location

	mu             sync.Mutex
	texts          map[string]string
	syncs          map[string]int
	symbolQueries  []string
	hierarchyCalls int
	polls          int
}

func New() *Service {
	return &Service{
		Symbols:      make(map[string][]langsvc.Symbol),
		SymbolErrors: make(map[string]error),
	}
}

func (s *Service) TypeHierarchy(ctx context.Context, uri string, pos langsvc.Position, dir langsvc.Direction, depth int) (*java.ClassHierarchyItem, error) {
	s.mu.Lock()
	s.hierarchyCalls++
	s.mu.Unlock()
	if s.HierarchyFunc != nil {
		return s.HierarchyFunc(ctx, uri, pos)
	}
	return s.Hierarchy, nil
}

func (s *Service) DocumentSymbols(ctx context.Context, uri string) ([]langsvc.Symbol, error) {
	s.mu.Lock()
	s.symbolQueries = append(s.symbolQueries, uri)
	s.mu.Unlock()
	if err := s.SymbolErrors[uri]; err != nil {
		return nil, err
	}
	return s.Symbols[uri], nil
}

func (s *Service) Diagnostics(ctx context.Context, uri string) ([]langsvc.Diagnostic, error) {
	s.mu.Lock()
	s.polls++
	text := s.texts[uri]
	s.mu.Unlock()
	if s.DiagnosticsFunc == nil {
		return nil, nil
	}
	return s.DiagnosticsFunc(uri, text), nil
}

func (s *Service) TypeDefinition(ctx context.Context, uri string, pos langsvc.Position) ([]langsvc.Location, error) {
	if s.DefinitionFunc == nil {
		return nil, nil
	}
	return s.DefinitionFunc(uri, pos), nil
}

func (s *Service) SyncDocument(ctx context.Context, uri, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texts == nil {
		s.texts = make(map[string]string)
		s.syncs = make(map[string]int)
	}
	s.texts[uri] = text
	s.syncs[uri]++
	return nil
}

// Text returns the last synced text of uri.
func (s *Service) Text(uri string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[uri]
}

func (s *Service) SyncCount(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncs[uri]
}

// SymbolQueries lists the URIs passed to DocumentSymbols, in call order.
func (s *Service) SymbolQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbolQueries...)
}

func (s *Service) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func (s *Service) HierarchyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hierarchyCalls
}

// Class builds a hierarchy node whose URI is derived from its name.
func Class(name string, parents ...*java.ClassHierarchyItem) *java.ClassHierarchyItem {
	return &java.ClassHierarchyItem{Name: name, URI: ClassURI(name), Parents: parents}
}

func ClassURI(name string) string {
	return "jdt://contents/javafx.graphics/" + name + ".class"
}

// ClassSymbol builds the outline entry of a class holding members.
func ClassSymbol(name string, members ...langsvc.Symbol) langsvc.Symbol {
	return langsvc.Symbol{Name: name, Kind: langsvc.SymbolKindClass, Children: members}
}

// Method builds a method symbol; name carries the parameter list.
func Method(name, returnType string) langsvc.Symbol {
	return langsvc.Symbol{Name: name, Detail: " : " + returnType, Kind: langsvc.SymbolKindMethod}
}

func Constructor(name string) langsvc.Symbol {
	return langsvc.Symbol{Name: name, Kind: langsvc.SymbolKindConstructor}
}

// AddClass registers the outline of a class under its ClassURI.
func (s *Service) AddClass(name string, members ...langsvc.Symbol) {
	s.Symbols[ClassURI(name)] = []langsvc.Symbol{ClassSymbol(name, members...)}
}

var _ langsvc.Service = (*Service)(nil)

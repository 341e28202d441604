// Package langsvc defines the narrow contracts the builder engine needs from
// a Java language service, and a client that satisfies them by talking to
// Eclipse JDT LS over JSON-RPC.
package langsvc

import (
	"context"

	"github.com/dhamidi/jfxbuilder/java"
)

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// SymbolKind uses the LSP numbering.
type SymbolKind int

const (
	SymbolKindFile        SymbolKind = 1
	SymbolKindModule      SymbolKind = 2
	SymbolKindNamespace   SymbolKind = 3
	SymbolKindPackage     SymbolKind = 4
	SymbolKindClass       SymbolKind = 5
	SymbolKindMethod      SymbolKind = 6
	SymbolKindField       SymbolKind = 8
	SymbolKindConstructor SymbolKind = 9
	SymbolKindEnum        SymbolKind = 10
	SymbolKindInterface   SymbolKind = 11
)

// Symbol is one entry of a document outline. For methods and constructors
// Name carries the parameter list ("setFill(Paint)") and Detail the return
// type, possibly prefixed with " : ".
type Symbol struct {
	Name     string
	Detail   string
	Kind     SymbolKind
	Range    Range
	Children []Symbol
}

// Diagnostic is a compiler problem. Code is the problem identifier as text
// regardless of whether the server sent a number or a string.
type Diagnostic struct {
	Range    Range
	Severity int
	Code     string
	Source   string
	Message  string
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// Direction selects which side of a type hierarchy to resolve.
type Direction int

const (
	DirectionChildren Direction = 0
	DirectionParents  Direction = 1
	DirectionBoth     Direction = 2
)

type HierarchyService interface {
	TypeHierarchy(ctx context.Context, uri string, pos Position, dir Direction, depth int) (*java.ClassHierarchyItem, error)
}

type SymbolService interface {
	DocumentSymbols(ctx context.Context, uri string) ([]Symbol, error)
}

type DiagnosticService interface {
	Diagnostics(ctx context.Context, uri string) ([]Diagnostic, error)
}

type DefinitionService interface {
	TypeDefinition(ctx context.Context, uri string, pos Position) ([]Location, error)
}

// DocumentSyncer tells the service about the current text of a document.
type DocumentSyncer interface {
	SyncDocument(ctx context.Context, uri, text string) error
}

// Service is everything the engine and the hint scanner use.
type Service interface {
	HierarchyService
	SymbolService
	DiagnosticService
	DefinitionService
	DocumentSyncer
}

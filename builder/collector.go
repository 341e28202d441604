// Package builder turns a construction expression into a fluent builder
// class. It walks the ancestor hierarchy reported by the language service,
// collects mutators and constructors, resolves the builder's type
// parameters, renders the source and repairs it against compiler
// diagnostics.
package builder

import (
	"context"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/override"
)

var collectorLog = commonlog.GetLogger("jfxbuilder.collector")

// Accessors that are kept even though they are not setters.
var accessorWhitelist = map[string]bool{
	"getChildren":   true,
	"getStyleClass": true,
}

// Members mentioning these internal types cannot be called from user code.
var blockedParamTypes = []string{"LayoutFlags", "ParentTraversalEngine", "DirtyBits"}

// Collection is the result of walking a hierarchy. Methods and
// Constructors keep discovery order; Visited lists class names in the
// order they were processed.
type Collection struct {
	Methods      []java.MethodSignature
	Constructors []java.ConstructorSignature
	Visited      []string
}

type Collector struct {
	Symbols  langsvc.SymbolService
	Registry *override.Registry
}

// Collect visits root and its ancestors breadth first. A member key seen on
// a subclass is never replaced by the same key on an ancestor. Symbol query
// failures for a single class are logged and skipped; only an empty method
// set is an error.
func (c *Collector) Collect(ctx context.Context, root *java.ClassHierarchyItem, target string) (*Collection, error) {
	result := &Collection{}
	methodKeys := make(map[string]bool)
	ctorKeys := make(map[string]bool)
	processed := make(map[string]bool)
	skipConstructors := c.Registry != nil && c.Registry.HasExtraConstructors(target)

	queue := []*java.ClassHierarchyItem{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]
		if item == nil || processed[item.Key()] {
			continue
		}
		processed[item.Key()] = true
		result.Visited = append(result.Visited, item.Name)

		for _, member := range c.members(ctx, item) {
			switch member.Kind {
			case langsvc.SymbolKindMethod:
				m, ok := parseMethod(item.Name, member)
				if !ok || methodKeys[m.Key()] {
					continue
				}
				methodKeys[m.Key()] = true
				result.Methods = append(result.Methods, m)
			case langsvc.SymbolKindConstructor:
				if skipConstructors || !strings.HasPrefix(member.Name, target+"(") {
					continue
				}
				ctor, ok := parseConstructor(target, member)
				if !ok || ctorKeys[ctor.Key()] {
					continue
				}
				ctorKeys[ctor.Key()] = true
				result.Constructors = append(result.Constructors, ctor)
			}
		}

		queue = append(queue, item.Parents...)
	}

	collectorLog.Debug("hierarchy collected", "target", target,
		"classes", len(result.Visited), "methods", len(result.Methods), "constructors", len(result.Constructors))
	if len(result.Methods) == 0 {
		return nil, ErrNoMembers
	}
	return result, nil
}

// members returns the children of the class symbol named like item.
func (c *Collector) members(ctx context.Context, item *java.ClassHierarchyItem) []langsvc.Symbol {
	symbols, err := c.Symbols.DocumentSymbols(ctx, item.URI)
	if err != nil {
		collectorLog.Debug("symbol query failed", "class", item.Name, "uri", item.URI, "error", err)
		return nil
	}
	name := rawName(item.Name)
	for _, candidates := range [][]langsvc.Symbol{symbols, nestedSymbols(symbols)} {
		for _, s := range candidates {
			if s.Kind == langsvc.SymbolKindClass && rawName(s.Name) == name {
				return s.Children
			}
		}
	}
	collectorLog.Debug("no class symbol", "class", item.Name, "uri", item.URI)
	return nil
}

func nestedSymbols(symbols []langsvc.Symbol) []langsvc.Symbol {
	var nested []langsvc.Symbol
	for _, s := range symbols {
		nested = append(nested, s.Children...)
	}
	return nested
}

func rawName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}

func parseMethod(class string, s langsvc.Symbol) (java.MethodSignature, bool) {
	name, params, ok := splitSymbolName(s.Name)
	if !ok {
		return java.MethodSignature{}, false
	}
	eligible := (strings.HasPrefix(name, "set") && len(name) > len("set")) || accessorWhitelist[name]
	if !eligible || isBlocked(params) {
		return java.MethodSignature{}, false
	}
	return java.MethodSignature{
		MethodName:     name,
		DeclaringClass: class,
		Params:         params,
		ReturnType:     returnType(s.Detail),
	}, true
}

func parseConstructor(target string, s langsvc.Symbol) (java.ConstructorSignature, bool) {
	_, params, ok := splitSymbolName(s.Name)
	if !ok || isBlocked(params) {
		return java.ConstructorSignature{}, false
	}
	return java.ConstructorSignature{ClassName: target, Params: params}, true
}

// splitSymbolName splits "setFill(Paint)" into "setFill" and its
// parameters.
func splitSymbolName(symbol string) (string, []java.Parameter, bool) {
	open := strings.IndexByte(symbol, '(')
	closing := strings.LastIndexByte(symbol, ')')
	if open <= 0 || closing < open {
		return "", nil, false
	}
	return symbol[:open], java.ParseParameters(symbol[open+1 : closing]), true
}

func isBlocked(params []java.Parameter) bool {
	for _, p := range params {
		for _, blocked := range blockedParamTypes {
			if strings.Contains(p.Type, blocked) {
				return true
			}
		}
	}
	return false
}

func returnType(detail string) string {
	detail = strings.TrimSpace(detail)
	detail = strings.TrimPrefix(detail, ":")
	return strings.TrimSpace(detail)
}

// Package override holds the curated tables that fill the gaps the
// language server cannot infer: extra constructors, extra imports, type
// aliases and method-level type-parameter clauses.
package override

import (
	"sort"

	"github.com/dhamidi/jfxbuilder/java"
)

// Tables is the mutable, decodable form of the override data. It is the
// shape of overrides.toml; Constructors and Methods are normally filled from
// constructor.txt and method.txt.
type Tables struct {
	Constructors         map[string][]string          `toml:"constructors,omitempty"`
	Methods              map[string]string            `toml:"methods,omitempty"`
	Imports              map[string][]string          `toml:"imports,omitempty"`
	AncestorImports      map[string][]string          `toml:"ancestor_imports,omitempty"`
	Aliases              map[string]map[string]string `toml:"aliases,omitempty"`
	MethodTypeParameters map[string]map[string]string `toml:"method_type_parameters,omitempty"`
}

// Registry is the read-only view of the override tables. It is built once
// and shared by every generation run.
type Registry struct {
	constructors    map[string][][]java.Parameter
	methods         map[string]string
	imports         map[string][]string
	ancestorImports map[string][]string
	aliases         map[string]map[string]string
	classMethods    map[string]map[string]string
}

// New builds a registry from tables. Constructor lines that do not parse
// into named parameters are dropped.
func New(t Tables) *Registry {
	r := &Registry{
		constructors:    make(map[string][][]java.Parameter),
		methods:         copyStrings(t.Methods),
		imports:         copyLists(t.Imports),
		ancestorImports: copyLists(t.AncestorImports),
		aliases:         copyNested(t.Aliases),
		classMethods:    copyNested(t.MethodTypeParameters),
	}
	for class, lines := range t.Constructors {
		seen := make(map[string]bool)
		for _, line := range lines {
			params, ok := parseOverload(line)
			if !ok || seen[line] {
				continue
			}
			seen[line] = true
			r.constructors[class] = append(r.constructors[class], params)
		}
	}
	return r
}

// ExtraConstructors returns the declared overloads for class in declared
// order, or nil when the class has none.
func (r *Registry) ExtraConstructors(class string) [][]java.Parameter {
	overloads := r.constructors[class]
	if len(overloads) == 0 {
		return nil
	}
	result := make([][]java.Parameter, len(overloads))
	for i, params := range overloads {
		result[i] = append([]java.Parameter(nil), params...)
	}
	return result
}

func (r *Registry) HasExtraConstructors(class string) bool {
	return len(r.constructors[class]) > 0
}

func (r *Registry) ExtraImports(class string) []string {
	return append([]string(nil), r.imports[class]...)
}

// AncestorImports returns the imports required whenever ancestor is part of
// the visited hierarchy.
func (r *Registry) AncestorImports(ancestor string) []string {
	return append([]string(nil), r.ancestorImports[ancestor]...)
}

// Alias returns the replacement for a parameter or return type of class.
// Only an exact match of the whole type text counts.
func (r *Registry) Alias(class, typ string) (string, bool) {
	alias, ok := r.aliases[class][typ]
	return alias, ok
}

// MethodTypeParameter returns the method-level clause for method on class.
// A per-class entry wins over the global table.
func (r *Registry) MethodTypeParameter(class, method string) (string, bool) {
	if clause, ok := r.classMethods[class][method]; ok {
		return clause, true
	}
	clause, ok := r.methods[method]
	return clause, ok
}

// Tables returns a copy of the registry contents in decodable form.
func (r *Registry) Tables() Tables {
	t := Tables{
		Constructors:         make(map[string][]string, len(r.constructors)),
		Methods:              copyStrings(r.methods),
		Imports:              copyLists(r.imports),
		AncestorImports:      copyLists(r.ancestorImports),
		Aliases:              copyNested(r.aliases),
		MethodTypeParameters: copyNested(r.classMethods),
	}
	for class, overloads := range r.constructors {
		for _, params := range overloads {
			t.Constructors[class] = append(t.Constructors[class], formatOverload(params))
		}
	}
	return t
}

// Classes lists every class named by any per-class table, sorted.
func (r *Registry) Classes() []string {
	set := make(map[string]bool)
	for c := range r.constructors {
		set[c] = true
	}
	for c := range r.imports {
		set[c] = true
	}
	for c := range r.aliases {
		set[c] = true
	}
	for c := range r.classMethods {
		set[c] = true
	}
	classes := make([]string, 0, len(set))
	for c := range set {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyLists(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func copyNested(m map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(m))
	for k, v := range m {
		out[k] = copyStrings(v)
	}
	return out
}

package builder

import (
	"sort"
	"strings"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/override"
)

// Single-letter names treated as type variables.
const typeVariableLetters = "RSTVWXYZ"

// Methods whose type variables belong to the method, not the class.
var methodScopedTypeVariables = map[string]bool{
	"setEventHandler": true,
}

// Resolution is the outcome of type-parameter resolution.
type Resolution struct {
	// Names is sorted and free of duplicates.
	Names []string
	// Clause is "" or "<A, B>".
	Clause string
	// Methods are the collected methods after alias substitution.
	Methods []java.MethodSignature
}

// ResolveTypeParameters scans constructors first and then methods for type
// variables. Aliases for target replace whole parameter and return types
// before the method is scanned.
func ResolveTypeParameters(target string, ctors []java.ConstructorSignature, methods []java.MethodSignature, reg *override.Registry) Resolution {
	found := make(map[string]bool)
	for _, ctor := range ctors {
		for _, p := range ctor.Params {
			scanType(p.Type, found)
		}
	}

	substituted := make([]java.MethodSignature, len(methods))
	for i, m := range methods {
		m = substitute(target, m, reg)
		substituted[i] = m
		if methodScopedTypeVariables[m.MethodName] {
			continue
		}
		for _, p := range m.Params {
			scanType(p.Type, found)
		}
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	res := Resolution{Names: names, Methods: substituted}
	if len(names) > 0 {
		res.Clause = "<" + strings.Join(names, ", ") + ">"
	}
	return res
}

func substitute(target string, m java.MethodSignature, reg *override.Registry) java.MethodSignature {
	if reg == nil {
		return m
	}
	params := make([]java.Parameter, len(m.Params))
	for i, p := range m.Params {
		if alias, ok := reg.Alias(target, p.Type); ok {
			p.Type = alias
		}
		params[i] = p
	}
	m.Params = params
	if alias, ok := reg.Alias(target, m.ReturnType); ok {
		m.ReturnType = alias
	}
	return m
}

// scanType records every argument of an angle-bracket list in typ that is
// exactly one candidate letter. Bare types such as "T" or "T[]" and
// wildcards such as "? super T" do not count.
func scanType(typ string, found map[string]bool) {
	for _, args := range java.TypeArgumentLists(typ) {
		for _, arg := range args {
			if len(arg) == 1 && strings.Contains(typeVariableLetters, arg) {
				found[arg] = true
			}
		}
	}
}

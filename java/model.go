package java

import "strings"

// ClassHierarchyItem is one node of a type hierarchy answer. Parents lists
// the direct supertypes only; their own parents hang off them.
type ClassHierarchyItem struct {
	Name    string
	URI     string
	Parents []*ClassHierarchyItem
}

// Key identifies a hierarchy node by declaring file and simple name.
func (c *ClassHierarchyItem) Key() string {
	return c.URI + "#" + c.Name
}

type MethodSignature struct {
	MethodName     string
	DeclaringClass string
	Params         []Parameter
	ReturnType     string
}

// Key is the method name followed by the raw parameter text, e.g.
// "setFill(Paint)". Overridden members in subclasses share the key of the
// member they override.
func (m MethodSignature) Key() string {
	return m.MethodName + "(" + strings.Join(m.ParamTypes(), ",") + ")"
}

func (m MethodSignature) ParamTypes() []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return types
}

type ConstructorSignature struct {
	ClassName string
	Params    []Parameter
}

// Key is the class name followed by the parameter-type tuple, e.g.
// "Pane(Node...)". Two overloads with the same tuple collapse into one.
func (c ConstructorSignature) Key() string {
	return c.ClassName + "(" + strings.Join(c.ParamTypes(), ",") + ")"
}

func (c ConstructorSignature) ParamTypes() []string {
	types := make([]string, len(c.Params))
	for i, p := range c.Params {
		types[i] = p.Type
	}
	return types
}

// BuilderModel is everything the synthesizer needs to render one builder.
type BuilderModel struct {
	ClassName      string
	PackageName    string
	TypeParameters string
	Methods        []MethodSignature
	Constructors   []ConstructorSignature

	// ExtraConstructors holds override-declared overloads in declared
	// order. When non-empty it replaces Constructors entirely and switches
	// the build accessor to deferred construction.
	ExtraConstructors [][]Parameter

	// MethodTypeParameters maps a mutator name to its method-level clause,
	// e.g. "setEventHandler" -> "<T extends Event>".
	MethodTypeParameters map[string]string

	ExtraImports []string
}

func (m *BuilderModel) BuilderName() string {
	return m.ClassName + "Builder"
}

// HasExtraConstructors reports whether the model uses deferred construction.
func (m *BuilderModel) HasExtraConstructors() bool {
	return len(m.ExtraConstructors) > 0
}

// MainClass is the top-level declaration enclosing an invoking document.
type MainClass struct {
	PackageName string
	FilePath    string
}

package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/jfxbuilder/java"
)

const indent = "    "

// Initial values for primitive fields backing deferred construction. A
// field still holding its sentinel has not been set.
var sentinels = map[string]string{
	"byte":   "-1",
	"short":  "-1",
	"int":    "-1",
	"long":   "-1L",
	"float":  "-1.0f",
	"double": "-1.0d",
	"char":   "'\\u0000'",
}

// Sizing setters whose two parameters are named width and height.
var sizingSetters = map[string]bool{
	"setMaxSize":  true,
	"setMinSize":  true,
	"setPrefSize": true,
}

const eventClause = "<T extends Event>"

// BuilderEncoder renders a BuilderModel as Java source. Every member is
// written on a single line so a compiler diagnostic on that line covers
// the whole member.
type BuilderEncoder struct {
	w     io.Writer
	model *java.BuilderModel
}

func NewBuilderEncoder(w io.Writer) *BuilderEncoder {
	return &BuilderEncoder{w: w}
}

func (e *BuilderEncoder) Encode(model *java.BuilderModel) error {
	e.model = model
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *BuilderEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	m := e.model

	sb.WriteString("package ")
	sb.WriteString(m.PackageName)
	sb.WriteString(";\n\n")

	writeImports(&sb, m.ExtraImports)
	sb.WriteString("\n")

	sb.WriteString("public class ")
	sb.WriteString(m.BuilderName())
	sb.WriteString(m.TypeParameters)
	sb.WriteString(" {\n")
	sb.WriteString(indent + "private " + e.targetType() + " in;\n")

	setters := make(map[string]bool)
	if m.HasExtraConstructors() {
		e.writeFieldSetters(&sb, setters)
		e.writeFactory(&sb, nil, "")
	} else if len(m.Constructors) == 0 {
		e.writeFactory(&sb, nil, "in = new "+e.targetType()+"();")
	} else {
		for _, ctor := range m.Constructors {
			params := positionalParams("", ctor.ParamTypes())
			e.writeFactory(&sb, params, "in = new "+e.targetType()+"("+paramNames(params)+");")
		}
	}

	e.writeBuild(&sb)
	e.writeApply(&sb)

	for _, method := range m.Methods {
		e.writeMethod(&sb, method, setters)
	}

	sb.WriteString("}\n")
	return []byte(sb.String()), nil
}

// targetType is the wrapped class with the builder's type arguments.
func (e *BuilderEncoder) targetType() string {
	return e.model.ClassName + java.TypeParameterNames(e.model.TypeParameters)
}

func (e *BuilderEncoder) builderType() string {
	return e.model.BuilderName() + java.TypeParameterNames(e.model.TypeParameters)
}

func (e *BuilderEncoder) staticClause() string {
	if e.model.TypeParameters == "" {
		return ""
	}
	return e.model.TypeParameters + " "
}

// writeFieldSetters emits one field and one chaining setter per distinct
// (type, name) pair across the override overloads.
func (e *BuilderEncoder) writeFieldSetters(sb *strings.Builder, setters map[string]bool) {
	seen := make(map[string]bool)
	for _, overload := range e.model.ExtraConstructors {
		for _, p := range overload {
			if seen[p.Type+" "+p.Name] {
				continue
			}
			seen[p.Type+" "+p.Name] = true
			setters[p.Name+" "+p.Type] = true

			sb.WriteString("\n" + indent + "private " + p.Type + " " + p.Name)
			if v, ok := sentinels[p.Type]; ok {
				sb.WriteString(" = " + v)
			}
			sb.WriteString(";\n")

			sb.WriteString(indent + "public " + e.builderType() + " " + p.Name + "(" + p.Type + " " + p.Name + ") { ")
			sb.WriteString("if (in == null) { this." + p.Name + " = " + p.Name + "; } ")
			sb.WriteString("else { in." + setterName(p.Name) + "(" + p.Name + "); } ")
			sb.WriteString("return this; }\n")
		}
	}
}

// writeFactory emits a static create method and the private constructor it
// calls. body is the constructor body.
func (e *BuilderEncoder) writeFactory(sb *strings.Builder, params []java.Parameter, body string) {
	decl := paramList(params)
	names := paramNames(params)

	sb.WriteString("\n" + indent + "public static " + e.staticClause() + e.builderType() + " create(" + decl + ") { ")
	sb.WriteString("return new " + e.builderType() + "(" + names + "); }\n")

	sb.WriteString("\n" + indent + "private " + e.model.BuilderName() + "(" + decl + ") {")
	if body != "" {
		sb.WriteString(" " + body + " ")
	}
	sb.WriteString("}\n")
}

func (e *BuilderEncoder) writeBuild(sb *strings.Builder) {
	m := e.model
	sb.WriteString("\n" + indent + "public " + e.targetType() + " build() {")
	if !m.HasExtraConstructors() {
		sb.WriteString(" return in; }\n")
		return
	}
	sb.WriteString("\n")
	sb.WriteString(indent + indent + "if (in == null) {\n")
	for i, overload := range m.ExtraConstructors {
		sb.WriteString(indent + indent + indent)
		if i > 0 {
			sb.WriteString("} else ")
		}
		sb.WriteString("if (" + readyCondition(overload) + ") {\n")
		sb.WriteString(indent + indent + indent + indent + "in = new " + e.targetType() + "(" + paramNames(overload) + ");\n")
	}
	sb.WriteString(indent + indent + indent + "}\n")
	sb.WriteString(indent + indent + "}\n")
	sb.WriteString(indent + indent + "return in;\n")
	sb.WriteString(indent + "}\n")
}

// readyCondition tests that every non-boolean parameter has been set.
func readyCondition(params []java.Parameter) string {
	var tests []string
	for _, p := range params {
		if p.Type == "boolean" {
			continue
		}
		if v, ok := sentinels[p.Type]; ok {
			tests = append(tests, p.Name+" != "+v)
		} else {
			tests = append(tests, p.Name+" != null")
		}
	}
	if len(tests) == 0 {
		return "true"
	}
	return strings.Join(tests, " && ")
}

func (e *BuilderEncoder) writeApply(sb *strings.Builder) {
	t := e.targetType()
	sb.WriteString("\n" + indent + "public " + e.builderType() + " apply(java.util.function.Consumer<" + t + "> func) { ")
	sb.WriteString("func.accept((" + t + ") in); return this; }\n")
}

func (e *BuilderEncoder) writeMethod(sb *strings.Builder, method java.MethodSignature, setters map[string]bool) {
	name := wrapperName(method.MethodName)
	types := method.ParamTypes()

	switch method.MethodName {
	case "getChildren":
		element, ok := java.RawTypeArgument(method.ReturnType, "ObservableList")
		if !ok {
			return
		}
		sb.WriteString("\n" + indent + "public " + e.builderType() + " children(" + element + "... elements) { ")
		sb.WriteString("in.getChildren().setAll(elements); return this; }\n")
		return
	case "getStyleClass":
		sb.WriteString("\n" + indent + "public " + e.builderType() + " styleClass(String value) { ")
		sb.WriteString("in.getStyleClass().add(value); return this; }\n")
		return
	}

	if len(types) > 0 && setters[name+" "+types[0]] {
		return
	}

	prefix := ""
	if sizingSetters[method.MethodName] {
		prefix = method.MethodName
	}
	params := positionalParams(prefix, types)
	decl := paramList(params)

	sb.WriteString("\n" + indent + "public ")
	if clause := e.methodClause(method.MethodName, decl); clause != "" {
		sb.WriteString(clause + " ")
	}
	sb.WriteString(e.builderType() + " " + name + "(" + decl + ") { ")
	sb.WriteString("in." + method.MethodName + "(" + paramNames(params) + "); return this; }\n")
}

// methodClause picks the method-level type parameters: an explicit table
// entry, or an Event-bounded T when the parameters mention a T that the
// class does not declare.
func (e *BuilderEncoder) methodClause(method, decl string) string {
	if clause, ok := e.model.MethodTypeParameters[method]; ok {
		return clause
	}
	if strings.Contains(decl, "<T>") && !e.classDeclares("T") {
		return eventClause
	}
	return ""
}

func (e *BuilderEncoder) classDeclares(name string) bool {
	clause := java.TypeParameterNames(e.model.TypeParameters)
	if clause == "" {
		return false
	}
	for _, p := range java.SplitTopLevel(clause[1 : len(clause)-1]) {
		if p == name {
			return true
		}
	}
	return false
}

// positionalParams names parameters value, value1..valueN, or width and
// height for the sizing setters.
func positionalParams(sizing string, types []string) []java.Parameter {
	params := make([]java.Parameter, len(types))
	for i, typ := range types {
		var name string
		switch {
		case sizing != "" && i == 0:
			name = "width"
		case sizing != "":
			name = "height"
		case len(types) == 1:
			name = "value"
		default:
			name = "value" + strconv.Itoa(i+1)
		}
		params[i] = java.Parameter{Type: typ, Name: name}
	}
	return params
}

func paramList(params []java.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func paramNames(params []java.Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// wrapperName turns "setPrefWidth" into "prefWidth".
func wrapperName(method string) string {
	rest := method[3:]
	if rest == "" {
		return rest
	}
	return strings.ToLower(rest[:1]) + rest[1:]
}

func setterName(field string) string {
	if field == "" {
		return "set"
	}
	return "set" + strings.ToUpper(field[:1]) + field[1:]
}

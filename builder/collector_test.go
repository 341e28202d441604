package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/langsvc/langsvctest"
	"github.com/dhamidi/jfxbuilder/override"
)

func methodKeys(c *Collection) []string {
	keys := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		keys[i] = m.Key()
	}
	return keys
}

func TestCollectSubclassWins(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Button",
		langsvctest.Method("setText(String)", "void"),
		langsvctest.Constructor("Button()"),
		langsvctest.Constructor("Button(String)"),
	)
	svc.AddClass("Labeled",
		langsvctest.Method("setText(String)", "void"),
		langsvctest.Method("setFont(Font)", "void"),
		langsvctest.Constructor("Labeled()"),
	)
	root := langsvctest.Class("Button", langsvctest.Class("Labeled"))

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), root, "Button")
	require.NoError(t, err)

	assert.Equal(t, []string{"setText(String)", "setFont(Font)"}, methodKeys(got))
	assert.Equal(t, "Button", got.Methods[0].DeclaringClass)
	assert.Equal(t, []string{"Button", "Labeled"}, got.Visited)
	require.Len(t, got.Constructors, 2)
	assert.Equal(t, "Button(String)", got.Constructors[1].Key())
}

func TestCollectVisitsSharedAncestorOnce(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Node", langsvctest.Method("setId(String)", "void"))
	svc.AddClass("A", langsvctest.Method("setA(int)", "void"))
	svc.AddClass("B", langsvctest.Method("setB(int)", "void"))
	svc.AddClass("Leaf")
	node := langsvctest.Class("Node")
	root := langsvctest.Class("Leaf", langsvctest.Class("A", node), langsvctest.Class("B", node))

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), root, "Leaf")
	require.NoError(t, err)

	assert.Equal(t, []string{"Leaf", "A", "B", "Node"}, got.Visited)
	assert.Equal(t, []string{
		langsvctest.ClassURI("Leaf"),
		langsvctest.ClassURI("A"),
		langsvctest.ClassURI("B"),
		langsvctest.ClassURI("Node"),
	}, svc.SymbolQueries())
	assert.Equal(t, []string{"setA(int)", "setB(int)", "setId(String)"}, methodKeys(got))
}

func TestCollectFiltersMembers(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Pane",
		langsvctest.Method("setWidth(double)", "void"),
		langsvctest.Method("set()", "void"),
		langsvctest.Method("getWidth()", "double"),
		langsvctest.Method("getChildren()", "ObservableList<Node>"),
		langsvctest.Method("getStyleClass()", "ObservableList<String>"),
		langsvctest.Method("setFlags(LayoutFlags)", "void"),
		langsvctest.Method("setDirty(DirtyBits, boolean)", "void"),
		langsvctest.Constructor("Pane(ParentTraversalEngine)"),
		langsvctest.Constructor("Pane(Node...)"),
		langsvctest.Constructor("Pane(Node...)"),
	)

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), langsvctest.Class("Pane"), "Pane")
	require.NoError(t, err)

	assert.Equal(t, []string{"setWidth(double)", "getChildren()", "getStyleClass()"}, methodKeys(got))
	assert.Equal(t, "ObservableList<Node>", got.Methods[1].ReturnType)
	require.Len(t, got.Constructors, 1)
	assert.Equal(t, "Pane(Node...)", got.Constructors[0].Key())
}

func TestCollectIgnoresAncestorConstructors(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("VBox", langsvctest.Method("setSpacing(double)", "void"))
	svc.AddClass("Pane", langsvctest.Constructor("Pane()"), langsvctest.Constructor("Pane(Node...)"))

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), langsvctest.Class("VBox", langsvctest.Class("Pane")), "VBox")
	require.NoError(t, err)
	assert.Empty(t, got.Constructors)
}

func TestCollectSkipsConstructorsWithOverrides(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Scene",
		langsvctest.Method("setFill(Paint)", "void"),
		langsvctest.Constructor("Scene(Parent)"),
	)
	reg := override.New(override.Tables{
		Constructors: map[string][]string{"Scene": {"Parent root"}},
	})

	c := &Collector{Symbols: svc, Registry: reg}
	got, err := c.Collect(context.Background(), langsvctest.Class("Scene"), "Scene")
	require.NoError(t, err)
	assert.Empty(t, got.Constructors)
	assert.Len(t, got.Methods, 1)
}

func TestCollectNestedClassSymbol(t *testing.T) {
	svc := langsvctest.New()
	svc.Symbols[langsvctest.ClassURI("Cell")] = []langsvc.Symbol{
		langsvctest.ClassSymbol("Outer",
			langsvctest.ClassSymbol("Cell<T>", langsvctest.Method("setItem(T)", "void")),
		),
	}

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), langsvctest.Class("Cell"), "Cell")
	require.NoError(t, err)
	assert.Equal(t, []string{"setItem(T)"}, methodKeys(got))
}

func TestCollectFailedQueryIsNotFatal(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Label", langsvctest.Method("setText(String)", "void"))
	svc.SymbolErrors[langsvctest.ClassURI("Labeled")] = errors.New("boom")

	c := &Collector{Symbols: svc}
	got, err := c.Collect(context.Background(), langsvctest.Class("Label", langsvctest.Class("Labeled")), "Label")
	require.NoError(t, err)
	assert.Equal(t, []string{"Label", "Labeled"}, got.Visited)
	assert.Len(t, got.Methods, 1)
}

func TestCollectNoMembers(t *testing.T) {
	svc := langsvctest.New()
	svc.AddClass("Empty", langsvctest.Constructor("Empty()"))

	c := &Collector{Symbols: svc}
	_, err := c.Collect(context.Background(), langsvctest.Class("Empty"), "Empty")
	assert.ErrorIs(t, err, ErrNoMembers)
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Collector{Symbols: langsvctest.New()}
	_, err := c.Collect(ctx, langsvctest.Class("Label"), "Label")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSymbolName(t *testing.T) {
	tests := []struct {
		symbol string
		name   string
		types  []string
		ok     bool
	}{
		{"setFill(Paint)", "setFill", []string{"Paint"}, true},
		{"setOnAction(EventHandler<ActionEvent>)", "setOnAction", []string{"EventHandler<ActionEvent>"}, true},
		{"setMaxSize(double, double)", "setMaxSize", []string{"double", "double"}, true},
		{"getChildren()", "getChildren", nil, true},
		{"field", "", nil, false},
		{"(int)", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			name, params, ok := splitSymbolName(tt.symbol)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}
			var types []string
			for _, p := range params {
				types = append(types, p.Type)
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

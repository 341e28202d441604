package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/langsvc/langsvctest"
	"github.com/dhamidi/jfxbuilder/override"
	"github.com/dhamidi/jfxbuilder/project"
	"github.com/dhamidi/jfxbuilder/workspace"
)

const mainSource = `package app;

import javafx.application.Application;

public class Main extends Application {
}
`

type fixture struct {
	dir    string
	svc    *langsvctest.Service
	engine *Engine
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}

	svc := langsvctest.New()
	store := &workspace.Store{Syncer: svc}
	locator := project.NewLocator(nil)
	reg, err := override.Default()
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.RepairInterval = 0
	opts.RepairCount = 3
	return &fixture{
		dir: dir,
		svc: svc,
		engine: &Engine{
			Service:     svc,
			Registry:    reg,
			Files:       store,
			Edits:       &workspace.FileEditApplier{Files: store},
			MainClasses: locator,
			Modules:     locator,
			Options:     opts,
		},
	}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, filepath.FromSlash(name))
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.path(name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateBox(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": mainSource,
		"src/app/View.java": "package app;\n\npublic class View {\n    Box box = new Box();\n}\n",
	})
	f.svc.AddClass("Box",
		langsvctest.Method("setColor(String)", "void"),
		langsvctest.Method("setSecret(int)", "void"),
		langsvctest.Method("getColor()", "String"),
		langsvctest.Constructor("Box()"),
	)
	var queried langsvc.Position
	f.svc.HierarchyFunc = func(ctx context.Context, uri string, pos langsvc.Position) (*java.ClassHierarchyItem, error) {
		queried = pos
		return langsvctest.Class("Box", langsvctest.Class("Object")), nil
	}
	f.svc.DiagnosticsFunc = rejectLines("setSecret", "67108965")

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/View.java"), Line: 3})
	require.NoError(t, err)

	assert.Equal(t, langsvc.Position{Line: 3, Character: 19}, queried)
	assert.Equal(t, "Box", res.Target)
	assert.Equal(t, f.path("src/app/jfxbuilder/BoxBuilder.java"), res.BuilderPath)
	assert.Equal(t, 2, res.Methods)
	assert.Equal(t, 1, res.Constructors)
	assert.Equal(t, 2, res.LinesAdded)
	assert.False(t, res.Skipped)

	view := f.read(t, "src/app/View.java")
	assert.Equal(t, "package app;\n\nimport app.jfxbuilder.BoxBuilder;\n\npublic class View {\n"+
		"    Box box = BoxBuilder.create()\n"+
		"                  .build();\n}\n", view)

	builder := f.read(t, "src/app/jfxbuilder/BoxBuilder.java")
	assert.True(t, strings.HasPrefix(builder, "package app.jfxbuilder;\n"))
	assert.Contains(t, builder, "public BoxBuilder color(String value) { in.setColor(value); return this; }")
	assert.Contains(t, builder, "private BoxBuilder() { in = new Box(); }")
	assert.NotContains(t, builder, "setSecret")
	assert.NotContains(t, builder, "getColor")
	assert.NotContains(t, builder, "\n\n\n")
	assert.Equal(t, 3, f.svc.Polls())
}

func TestGenerateSceneUsesOverrideConstructors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": "package app;\n\npublic class Main extends Application {\n    Scene scene = new Scene(root);\n}\n",
	})
	f.svc.AddClass("Scene",
		langsvctest.Method("setFill(Paint)", "void"),
		langsvctest.Method("setRoot(Parent)", "void"),
		langsvctest.Constructor("Scene(Parent)"),
	)
	f.svc.Hierarchy = langsvctest.Class("Scene")

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Main.java"), Line: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Constructors)

	builder := f.read(t, "src/app/jfxbuilder/SceneBuilder.java")
	assert.Contains(t, builder, "private Parent root;")
	assert.Contains(t, builder, "private double width = -1.0d;")
	assert.Contains(t, builder, "if (root != null) {")
	assert.Contains(t, builder, "public static SceneBuilder create() { return new SceneBuilder(); }")
	assert.NotContains(t, builder, "public SceneBuilder root(Parent value)")
	assert.NotContains(t, builder, "public SceneBuilder fill(Paint value)")
	assert.Contains(t, builder, "public SceneBuilder fill(Paint fill) { if (in == null) { this.fill = fill; } else { in.setFill(fill); } return this; }")
}

func TestGenerateGenericClass(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": mainSource,
		"src/app/Lists.java": "package app;\n\nimport app.jfxbuilder.ListViewBuilder;\n\nclass Lists {\n" +
			"    ListView<String> list = new ListView<String>();\n}\n",
	})
	f.svc.AddClass("ListView",
		langsvctest.Method("setItems(ObservableList<T>)", "void"),
		langsvctest.Constructor("ListView()"),
	)
	f.svc.Hierarchy = langsvctest.Class("ListView")

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Lists.java"), Line: 5})
	require.NoError(t, err)
	assert.Equal(t, "<T>", res.TypeParameters)
	assert.Equal(t, 0, res.LinesAdded)

	lists := f.read(t, "src/app/Lists.java")
	assert.Contains(t, lists, "    ListView<String> list = ListViewBuilder.<String>create()\n")
	builder := f.read(t, "src/app/jfxbuilder/ListViewBuilder.java")
	assert.Contains(t, builder, "public class ListViewBuilder<T> {")
	assert.Contains(t, builder, "public static <T> ListViewBuilder<T> create() { return new ListViewBuilder<T>(); }")
}

func TestGenerateAddsModuleImports(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/module-info.java": "module app {\n    requires javafx.controls;\n    requires javafx.media;\n}\n",
		"src/app/Main.java":    "package app;\n\npublic class Main extends Application {\n    MediaView view = new MediaView();\n}\n",
	})
	f.svc.AddClass("MediaView", langsvctest.Method("setFitWidth(double)", "void"))
	f.svc.Hierarchy = langsvctest.Class("MediaView")

	_, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Main.java"), Line: 3})
	require.NoError(t, err)

	builder := f.read(t, "src/app/jfxbuilder/MediaViewBuilder.java")
	assert.Contains(t, builder, "import javafx.scene.media.*;")
	assert.NotContains(t, builder, "import javafx.scene.web.*;")
}

func TestGenerateErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java":  mainSource,
		"src/app/notes.txt":  "new Box()\n",
		"src/app/Plain.java": "package app;\n\nclass Plain {\n    int x = 1;\n    Box b = new Box();\n}\n",
	})

	_, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/notes.txt"), Line: 0})
	assert.ErrorIs(t, err, ErrNotJava)
	assert.True(t, IsUserFacing(err))

	_, err = f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Plain.java"), Line: 3})
	assert.ErrorIs(t, err, ErrNotConstruction)

	_, err = f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Plain.java"), Line: 42})
	assert.ErrorIs(t, err, ErrNotConstruction)

	_, err = f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Plain.java"), Line: 4})
	assert.ErrorIs(t, err, ErrClassNotFound)

	f.svc.Hierarchy = langsvctest.Class("Box")
	_, err = f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Plain.java"), Line: 4})
	assert.ErrorIs(t, err, ErrNoMembers)

	assert.Equal(t, "package app;\n\nclass Plain {\n    int x = 1;\n    Box b = new Box();\n}\n", f.read(t, "src/app/Plain.java"))
}

func TestGenerateSkipsWithoutEnclosingClass(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Snippet.java": "Box b = new Box();\n",
	})
	f.svc.AddClass("Box", langsvctest.Method("setColor(String)", "void"))
	f.svc.Hierarchy = langsvctest.Class("Box")

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Snippet.java"), Line: 0})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "Box b = new Box();\n", f.read(t, "src/app/Snippet.java"))
	_, statErr := os.Stat(f.path("src/app/jfxbuilder"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateCancelledHierarchyQuery(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": "package app;\n\npublic class Main extends Application {\n    Box b = new Box();\n}\n",
	})
	f.svc.HierarchyFunc = func(ctx context.Context, uri string, pos langsvc.Position) (*java.ClassHierarchyItem, error) {
		f.engine.Cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Main.java"), Line: 3})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.False(t, IsUserFacing(err))
}

func TestGenerateAddsAncestorImports(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": "package app;\n\npublic class Main extends Application {\n    TrendChart chart = new TrendChart();\n}\n",
	})
	f.svc.AddClass("TrendChart", langsvctest.Method("setHorizon(int)", "void"))
	f.svc.AddClass("XYChart", langsvctest.Method("setAlternativeRowFillVisible(boolean)", "void"))
	f.svc.AddClass("Chart", langsvctest.Method("setTitle(String)", "void"))
	f.svc.Hierarchy = langsvctest.Class("TrendChart", langsvctest.Class("XYChart", langsvctest.Class("Chart")))

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Main.java"), Line: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Methods)

	builder := f.read(t, "src/app/jfxbuilder/TrendChartBuilder.java")
	assert.Equal(t, 1, strings.Count(builder, "import javafx.scene.chart.XYChart.*;\n"))
	assert.NotContains(t, builder, "ButtonBar.ButtonData")
}

func TestGenerateSupersedesInFlightQuery(t *testing.T) {
	main := "package app;\n\npublic class Main extends Application {\n    Box b = new Box();\n}\n"
	f := newFixture(t, map[string]string{
		"src/app/Main.java": main,
		"src/app/View.java": "package app;\n\nclass View {\n    Label l = new Label();\n}\n",
	})
	f.svc.AddClass("Label", langsvctest.Method("setText(String)", "void"))
	started := make(chan struct{})
	f.svc.HierarchyFunc = func(ctx context.Context, uri string, pos langsvc.Position) (*java.ClassHierarchyItem, error) {
		if strings.HasSuffix(uri, "/Main.java") {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return langsvctest.Class("Label"), nil
	}

	first := make(chan error, 1)
	go func() {
		_, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/Main.java"), Line: 3})
		first <- err
	}()
	<-started

	res, err := f.engine.Generate(context.Background(), Request{Path: f.path("src/app/View.java"), Line: 3})
	require.NoError(t, err)
	assert.Equal(t, "Label", res.Target)

	assert.ErrorIs(t, <-first, ErrCancelled)
	assert.Equal(t, main, f.read(t, "src/app/Main.java"))
	assert.NoFileExists(t, f.path("src/app/jfxbuilder/BoxBuilder.java"))
	assert.FileExists(t, f.path("src/app/jfxbuilder/LabelBuilder.java"))
}

func TestGenerateAll(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app/Main.java": mainSource,
		"src/app/View.java": "package app;\n\nclass View {\n" +
			"    Label title = new Label(\"hi\");\n" +
			"    // Label old = new Label();\n" +
			"    Unknown u = new Unknown();\n" +
			"    Button ok = new Button(\"OK\");\n}\n",
	})
	f.svc.AddClass("Label", langsvctest.Method("setText(String)", "void"))
	f.svc.AddClass("Button", langsvctest.Method("setText(String)", "void"))
	f.svc.HierarchyFunc = func(ctx context.Context, uri string, pos langsvc.Position) (*java.ClassHierarchyItem, error) {
		line := strings.Split(f.svc.Text(uri), "\n")[pos.Line]
		switch {
		case strings.Contains(line, "new Label("):
			return langsvctest.Class("Label"), nil
		case strings.Contains(line, "new Button("):
			return langsvctest.Class("Button"), nil
		}
		return nil, nil
	}

	results, err := f.engine.GenerateAll(context.Background(), f.path("src/app/View.java"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Button", results[0].Target)
	assert.Equal(t, "Label", results[1].Target)

	view := f.read(t, "src/app/View.java")
	assert.Contains(t, view, "    Label title = LabelBuilder.create(\"hi\")\n")
	assert.Contains(t, view, "    Button ok = ButtonBuilder.create(\"OK\")\n")
	assert.Contains(t, view, "    // Label old = new Label();\n")
	assert.Contains(t, view, "    Unknown u = new Unknown();\n")
	assert.Contains(t, view, "import app.jfxbuilder.LabelBuilder;")
	assert.Contains(t, view, "import app.jfxbuilder.ButtonBuilder;")
	assert.FileExists(t, f.path("src/app/jfxbuilder/LabelBuilder.java"))
	assert.FileExists(t, f.path("src/app/jfxbuilder/ButtonBuilder.java"))
}

package workspace

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
)

type fixedMain struct {
	main *java.MainClass
}

func (f fixedMain) FindMainClass(ctx context.Context, path string) (*java.MainClass, error) {
	return f.main, nil
}

const viewSource = `package app;

class View {
    Label title = new Label("x");
    Widget w = new Widget();
    ListView<String> list = new ListView<String>();
    Button ok = new Button();
}
`

// sceneDefinitions resolves the class named at pos through the synced text.
func sceneDefinitions(svc *langsvctest.Service) func(uri string, pos langsvc.Position) []langsvc.Location {
	return func(uri string, pos langsvc.Position) []langsvc.Location {
		line := strings.Split(svc.Text(uri), "\n")[pos.Line]
		c, ok := java.FindConstruction(pos.Line, line)
		if !ok || langsvc.UTF16Column(c.Text, c.NameColumn) != pos.Character {
			return nil
		}
		if c.SimpleName == "Widget" {
			return []langsvc.Location{{URI: "file:///lib/com/acme/Widget.java"}}
		}
		return []langsvc.Location{{URI: "jdt://contents/javafx.controls/javafx.scene.control/" + c.SimpleName + ".class"}}
	}
}

func newHintFixture(t *testing.T) (string, *HintScanner) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app", "jfxbuilder"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "View.java"), []byte(viewSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "jfxbuilder", "ButtonBuilder.java"), []byte("new Button();"), 0o644))

	svc := langsvctest.New()
	svc.DefinitionFunc = sceneDefinitions(svc)
	return dir, &HintScanner{
		Definitions: svc,
		Syncer:      svc,
		Files:       &Store{},
		MainClasses: fixedMain{&java.MainClass{PackageName: "app", FilePath: filepath.Join(dir, "app", "Main.java")}},
	}
}

func TestHintScannerScan(t *testing.T) {
	dir, scanner := newHintFixture(t)

	hints, err := scanner.Scan(context.Background(), filepath.Join(dir, "app", "View.java"))
	require.NoError(t, err)
	require.Len(t, hints, 2)

	assert.Equal(t, "Label", hints[0].Class)
	assert.Equal(t, "Can generate builder class", hints[0].Message)
	assert.Equal(t, langsvc.Range{
		Start: langsvc.Position{Line: 3, Character: 22},
		End:   langsvc.Position{Line: 3, Character: 27},
	}, hints[0].Range)

	assert.Equal(t, "ListView", hints[1].Class)
	assert.Equal(t, []string{"String"}, hints[1].TypeArguments)
	assert.Equal(t, "Can generate builder class (Type parameters: String)", hints[1].Message)

	d := hints[0].Diagnostic()
	assert.Equal(t, 4, d.Severity)
	assert.Equal(t, HintSource, d.Source)
}

func TestHintScannerRangeCountsUTF16Units(t *testing.T) {
	dir, scanner := newHintFixture(t)
	path := filepath.Join(dir, "app", "Title.java")
	src := "package app;\n\nclass Title {\n    Label 見出し = new Label(\"x\");\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	hints, err := scanner.Scan(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, langsvc.Range{
		Start: langsvc.Position{Line: 3, Character: 20},
		End:   langsvc.Position{Line: 3, Character: 25},
	}, hints[0].Range)
}

func TestHintScannerWithoutMainClass(t *testing.T) {
	dir, scanner := newHintFixture(t)
	scanner.MainClasses = fixedMain{}

	hints, err := scanner.Scan(context.Background(), filepath.Join(dir, "app", "View.java"))
	require.NoError(t, err)
	assert.Empty(t, hints)
}

func TestHintScannerScanTree(t *testing.T) {
	dir, scanner := newHintFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "Hidden.java"), []byte(viewSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "Empty.java"), []byte("class Empty {}\n"), 0o644))
	scanner.Workers = 2

	result, err := scanner.ScanTree(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Len(t, result[filepath.Join(dir, "app", "View.java")], 2)
}

func TestJavaFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b/B.java", "a/A.java", "a/notes.txt", "gen/G.java", ".idea/I.java"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	got, err := JavaFiles(dir, "gen")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", "A.java"), filepath.Join(dir, "b", "B.java")}, got)
}

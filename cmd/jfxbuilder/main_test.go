package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jfxbuilder/builder"
	"github.com/dhamidi/jfxbuilder/project"
)

func TestProjectRoot(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "demo", "src", "main", "java")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "module-info.java"), []byte("module demo {}\n"), 0o644))
	view := filepath.Join(src, "app", "View.java")
	require.NoError(t, os.WriteFile(view, []byte("class View {}\n"), 0o644))

	plain := filepath.Join(dir, "plain", "View.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(plain), 0o755))
	require.NoError(t, os.WriteFile(plain, []byte("class View {}\n"), 0o644))

	locator := project.NewLocator(nil)
	assert.Equal(t, filepath.Join(dir, "demo"), projectRoot(locator, view))
	assert.Equal(t, filepath.Join(dir, "plain"), projectRoot(locator, plain))
	assert.Equal(t, dir, projectRoot(locator, dir))

	a := &app{}
	assert.Equal(t, "/explicit", a.rootFor("/explicit", view))
}

func TestReporter(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	r := newReporter(&buf)

	r.Error(errors.Wrap(builder.ErrNotConstruction, "line 4"))
	assert.Equal(t, "! line 4: no constructor call on this line\n", buf.String())

	buf.Reset()
	r.Error(errors.WithHint(errors.New("missing --line"), "pass the line"))
	assert.Equal(t, "error: missing --line\n  hint: pass the line\n", buf.String())

	buf.Reset()
	r.Generated(&builder.Result{Target: "ListView", TypeParameters: "<T>", Methods: 3, Constructors: 2, BuilderPath: "app/jfxbuilder/ListViewBuilder.java"})
	assert.Equal(t, "✓ ListViewBuilder<T> (3 methods, 2 constructors) app/jfxbuilder/ListViewBuilder.java\n", buf.String())
}

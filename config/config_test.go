package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"jdtls"}, c.JDTLS.Command)
	assert.Equal(t, 500*time.Millisecond, c.Repair.Interval)
	assert.Equal(t, 20, c.Repair.Count)
	assert.Equal(t, 100, c.Hierarchy.MaxDepth)
	assert.Equal(t, "jfxbuilder", c.Builder.Dir)
	assert.Equal(t, 4, c.Hints.Workers)

	opts := c.EngineOptions()
	assert.Equal(t, 20, opts.RepairCount)
	assert.Equal(t, "jfxbuilder", opts.BuilderDir)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jfxbuilder.toml"), []byte(`
[jdtls]
command = ["/opt/jdtls/bin/jdtls", "-data", "/tmp/ws"]

[repair]
interval = "50ms"
count = 3

[overrides]
dir = "overrides"
`), 0o644))
	t.Setenv("JFXBUILDER_REPAIR_COUNT", "7")

	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/jdtls/bin/jdtls", "-data", "/tmp/ws"}, c.JDTLS.Command)
	assert.Equal(t, 50*time.Millisecond, c.Repair.Interval)
	assert.Equal(t, 7, c.Repair.Count)
	assert.Equal(t, "overrides", c.Overrides.Dir)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("builder:\n  dir: gen\nhints:\n  workers: 9\n"), 0o644))

	c, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "gen", c.Builder.Dir)
	assert.Equal(t, 9, c.Hints.Workers)

	_, err = Load(New(), filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("repair-count", 20, "")
	fs.String("builder-dir", "jfxbuilder", "")
	require.NoError(t, fs.Parse([]string{"--repair-count", "2"}))

	v := New()
	require.NoError(t, BindFlags(v, fs, map[string]string{
		"repair.count": "repair-count",
		"builder.dir":  "builder-dir",
		"log.file":     "no-such-flag",
	}))
	c, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Repair.Count)
	assert.Equal(t, "jfxbuilder", c.Builder.Dir)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			JDTLS:     JDTLS{Command: []string{"jdtls"}},
			Repair:    Repair{Interval: time.Second, Count: 1},
			Hierarchy: Hierarchy{MaxDepth: 10},
			Builder:   Builder{Dir: "jfxbuilder"},
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no command", func(c *Config) { c.JDTLS.Command = nil }, false},
		{"negative count", func(c *Config) { c.Repair.Count = -1 }, false},
		{"zero depth", func(c *Config) { c.Hierarchy.MaxDepth = 0 }, false},
		{"dotted builder dir", func(c *Config) { c.Builder.Dir = "a.b" }, false},
		{"zero count", func(c *Config) { c.Repair.Count = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

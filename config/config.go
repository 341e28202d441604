// Package config loads jfxbuilder settings from defaults, an optional
// jfxbuilder.toml or jfxbuilder.yaml, JFXBUILDER_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dhamidi/jfxbuilder/builder"
)

const (
	Name      = "jfxbuilder"
	EnvPrefix = "JFXBUILDER"
)

type Config struct {
	JDTLS     JDTLS     `mapstructure:"jdtls"`
	Repair    Repair    `mapstructure:"repair"`
	Hierarchy Hierarchy `mapstructure:"hierarchy"`
	Builder   Builder   `mapstructure:"builder"`
	Overrides Overrides `mapstructure:"overrides"`
	Log       Log       `mapstructure:"log"`
	Hints     Hints     `mapstructure:"hints"`
}

type JDTLS struct {
	Command     []string      `mapstructure:"command"`
	DataDir     string        `mapstructure:"data_dir"`
	InitTimeout time.Duration `mapstructure:"init_timeout"`
}

type Repair struct {
	Interval time.Duration `mapstructure:"interval"`
	Count    int           `mapstructure:"count"`
}

type Hierarchy struct {
	MaxDepth int `mapstructure:"max_depth"`
}

type Builder struct {
	Dir string `mapstructure:"dir"`
}

type Overrides struct {
	// Dir holds method.txt, constructor.txt or overrides.toml replacing
	// the embedded defaults.
	Dir string `mapstructure:"dir"`
}

type Log struct {
	Verbosity int    `mapstructure:"verbosity"`
	File      string `mapstructure:"file"`
}

type Hints struct {
	Workers int `mapstructure:"workers"`
}

// EngineOptions maps the configuration onto generation options.
func (c *Config) EngineOptions() builder.Options {
	return builder.Options{
		MaxDepth:       c.Hierarchy.MaxDepth,
		BuilderDir:     c.Builder.Dir,
		RepairInterval: c.Repair.Interval,
		RepairCount:    c.Repair.Count,
	}
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	opts := builder.DefaultOptions()

	v.SetDefault("jdtls.command", []string{"jdtls"})
	v.SetDefault("jdtls.data_dir", "")
	v.SetDefault("jdtls.init_timeout", 2*time.Minute)

	v.SetDefault("repair.interval", opts.RepairInterval)
	v.SetDefault("repair.count", opts.RepairCount)

	v.SetDefault("hierarchy.max_depth", opts.MaxDepth)
	v.SetDefault("builder.dir", opts.BuilderDir)

	v.SetDefault("overrides.dir", "")

	v.SetDefault("log.verbosity", 0)
	v.SetDefault("log.file", "")

	v.SetDefault("hints.workers", 4)
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up. Nothing is read yet.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigName(Name)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", Name))
	}
	return v
}

// BindFlags makes set flags override the configuration. Each entry maps a
// config key to a flag name; flags missing from fs are ignored.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "binding flag --%s", name)
		}
	}
	return nil
}

// Load reads the config file, if any, and decodes the result. An explicit
// file must exist; the default search path may come up empty.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.WithHint(errors.Wrap(err, "reading config"),
				"check the syntax of "+Name+".toml or "+Name+".yaml")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.JDTLS.Command) == 0 {
		return errors.WithHint(errors.New("jdtls.command is empty"), "set it to the jdtls launcher, e.g. [\"jdtls\"]")
	}
	if c.Repair.Count < 0 {
		return errors.Newf("repair.count must not be negative, got %d", c.Repair.Count)
	}
	if c.Repair.Interval < 0 {
		return errors.Newf("repair.interval must not be negative, got %s", c.Repair.Interval)
	}
	if c.Hierarchy.MaxDepth <= 0 {
		return errors.Newf("hierarchy.max_depth must be positive, got %d", c.Hierarchy.MaxDepth)
	}
	if c.Builder.Dir == "" || strings.ContainsAny(c.Builder.Dir, `/\.`) {
		return errors.WithHint(errors.Newf("invalid builder.dir %q", c.Builder.Dir),
			"use a single package segment such as jfxbuilder")
	}
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/jfxbuilder/builder"
	"github.com/dhamidi/jfxbuilder/config"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/override"
	"github.com/dhamidi/jfxbuilder/project"
	"github.com/dhamidi/jfxbuilder/workspace"
)

const version = "0.1.0"

var log = commonlog.GetLogger("jfxbuilder")

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	report     *reporter
}

func main() {
	a := &app{v: config.New(), report: newReporter(os.Stderr)}

	rootCmd := &cobra.Command{
		Use:               "jfxbuilder",
		Short:             "Generate fluent builder classes for JavaFX scene classes",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default jfxbuilder.toml or jfxbuilder.yaml)")
	flags.CountP("verbose", "v", "increase log verbosity")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.StringSlice("jdtls", nil, "language server command and arguments")
	flags.String("jdtls-data", "", "language server workspace data directory")
	flags.String("overrides", "", "directory with method.txt, constructor.txt or overrides.toml")
	flags.String("builder-dir", "", "package name for generated builders")
	if err := config.BindFlags(a.v, flags, map[string]string{
		"log.verbosity":  "verbose",
		"log.file":       "log-file",
		"jdtls.command":  "jdtls",
		"jdtls.data_dir": "jdtls-data",
		"overrides.dir":  "overrides",
		"builder.dir":    "builder-dir",
	}); err != nil {
		a.report.Error(err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newHintsCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newOverridesCmd(a))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, builder.ErrCancelled) || errors.Is(err, context.Canceled) {
			return
		}
		a.report.Error(err)
		os.Exit(1)
	}
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Log.File != "" {
		commonlog.Configure(cfg.Log.Verbosity, &cfg.Log.File)
	} else {
		commonlog.Configure(cfg.Log.Verbosity, nil)
	}
	return nil
}

// session is a running language server with the engine and hint scanner
// wired to it.
type session struct {
	client  *langsvc.Client
	docs    *workspace.Documents
	store   *workspace.Store
	engine  *builder.Engine
	hints   *workspace.HintScanner
	locator *project.Locator
}

func (a *app) startSession(ctx context.Context, root string) (*session, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}
	reg, err := override.Load(a.cfg.Overrides.Dir)
	if err != nil {
		return nil, err
	}

	log.Info("starting language server", "command", a.cfg.JDTLS.Command, "root", root)
	client, err := langsvc.Start(ctx, langsvc.Options{
		Command:     a.cfg.JDTLS.Command,
		DataDir:     a.cfg.JDTLS.DataDir,
		RootDir:     root,
		InitTimeout: a.cfg.JDTLS.InitTimeout,
	})
	if err != nil {
		return nil, err
	}

	docs := workspace.NewDocuments()
	store := &workspace.Store{Documents: docs, Syncer: client}
	locator := project.NewLocator(store)
	return &session{
		client:  client,
		docs:    docs,
		store:   store,
		locator: locator,
		engine: &builder.Engine{
			Service:     client,
			Registry:    reg,
			Files:       store,
			Edits:       &workspace.FileEditApplier{Files: store},
			MainClasses: locator,
			Modules:     locator,
			Options:     a.cfg.EngineOptions(),
		},
		hints: &workspace.HintScanner{
			Definitions: client,
			Syncer:      client,
			Files:       store,
			MainClasses: locator,
			BuilderDir:  a.cfg.Builder.Dir,
			Workers:     a.cfg.Hints.Workers,
		},
	}, nil
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Shutdown(ctx); err != nil {
		log.Debug("language server shutdown", "error", err)
		s.client.Close()
	}
}

// rootFor picks the workspace root for path: the explicit root when given,
// a directory argument itself, or the parent of the nearest module-info.java's
// source folder. Maven's src/main/java layout resolves to the project
// directory.
func (a *app) rootFor(root, path string) string {
	if root != "" {
		return root
	}
	return projectRoot(project.NewLocator(nil), path)
}

func projectRoot(locator *project.Locator, path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path
	}
	if m, err := locator.FindModule(path); err == nil && m != nil {
		if strings.HasSuffix(filepath.ToSlash(m.SrcDir), "/src/main/java") {
			return filepath.Dir(filepath.Dir(filepath.Dir(m.SrcDir)))
		}
		return filepath.Dir(m.SrcDir)
	}
	return filepath.Dir(path)
}

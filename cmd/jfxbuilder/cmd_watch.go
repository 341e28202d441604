package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jfxbuilder/workspace"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Rescan Java sources for builder hints whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := args[0]
			s, err := a.startSession(ctx, dir)
			if err != nil {
				return err
			}
			defer s.Close()

			found, err := s.hints.ScanTree(ctx, dir)
			if err != nil {
				return err
			}
			a.printHints(found)

			w, err := workspace.NewWatcher(dir, debounce, func(path string) {
				hints, err := s.hints.Scan(ctx, path)
				if err != nil {
					log.Warning("scan failed", "path", path, "error", err)
					return
				}
				a.report.Hints(path, hints)
			}, a.cfg.Builder.Dir)
			if err != nil {
				return err
			}
			defer w.Close()
			w.Start()

			log.Notice("watching for changes", "dir", dir)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", workspace.DefaultDebounce, "quiet period before a changed file is rescanned")
	return cmd
}

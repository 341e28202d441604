package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jfxbuilder/workspace"
)

func newHintsCmd(a *app) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "hints <file.java|dir>",
		Short: "List constructions of scene classes that have no builder yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := a.startSession(cmd.Context(), a.rootFor(root, path))
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				hints, err := s.hints.Scan(cmd.Context(), path)
				if err != nil {
					return err
				}
				a.report.Hints(path, hints)
				return nil
			}

			found, err := s.hints.ScanTree(cmd.Context(), path)
			if err != nil {
				return err
			}
			a.printHints(found)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root for the language server")
	return cmd
}

func (a *app) printHints(found map[string][]workspace.Hint) {
	paths := make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		a.report.Hints(p, found[p])
	}
}

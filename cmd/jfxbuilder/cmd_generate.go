package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/jfxbuilder/builder"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		line int
		all  bool
		root string
	)

	cmd := &cobra.Command{
		Use:   "generate <file.java>",
		Short: "Generate the builder for the construction on a line and rewrite it",
		Long: `Generate a fluent builder class for the "new X(...)" expression on the
given line, write it next to the application's main class and replace the
expression with X` + "`Builder.create(...).build()`" + `.

With --all every construction in the file is processed, last line first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !all && line <= 0 {
				return errors.WithHint(errors.New("missing --line"), "pass the 1-based line of the construction, or --all")
			}

			s, err := a.startSession(cmd.Context(), a.rootFor(root, path))
			if err != nil {
				return err
			}
			defer s.Close()

			if all {
				results, err := s.engine.GenerateAll(cmd.Context(), path)
				for _, res := range results {
					a.report.Generated(res)
				}
				return err
			}
			res, err := s.engine.Generate(cmd.Context(), builder.Request{Path: path, Line: line - 1})
			if err != nil {
				return err
			}
			a.report.Generated(res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 0, "1-based line of the construction")
	cmd.Flags().BoolVar(&all, "all", false, "generate builders for every construction in the file")
	cmd.Flags().StringVar(&root, "root", "", "workspace root for the language server (default: guessed from the file)")

	return cmd
}

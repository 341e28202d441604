package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jfxbuilder/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Serve builder hints and generation commands over stdio",
		Long: `Run as a language server on stdin/stdout. Constructions of scene classes
without a builder are published as hint diagnostics, and the code actions
"Generate XBuilder" and "Generate all builders in file" run the generator.

Logs go to stderr or --log-file, never to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = wd
			}
			s, err := a.startSession(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer s.Close()

			server := lsp.NewServer(s.engine, s.hints, s.docs, version)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root for the backing language server (default: current directory)")
	return cmd
}

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/jfxbuilder/override"
)

func newOverridesCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Show the effective override tables",
		Long: `Print the override tables after merging the built-in data with the
directory named by --overrides. The toml format can be saved as
overrides.toml and edited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := override.Load(a.cfg.Overrides.Dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "toml":
				return override.EncodeTables(out, reg.Tables())
			case "text":
				t := reg.Tables()
				for _, class := range reg.Classes() {
					fmt.Fprintln(out, class)
					for _, ctor := range t.Constructors[class] {
						fmt.Fprintf(out, "  constructor (%s)\n", ctor)
					}
					for _, imp := range t.Imports[class] {
						fmt.Fprintf(out, "  import %s\n", imp)
					}
					for _, kv := range sortedPairs(t.Aliases[class]) {
						fmt.Fprintf(out, "  alias %s\n", kv)
					}
					for _, kv := range sortedPairs(t.MethodTypeParameters[class]) {
						fmt.Fprintf(out, "  method %s\n", kv)
					}
				}
				if len(t.Methods) > 0 {
					fmt.Fprintln(out, "*")
					for _, kv := range sortedPairs(t.Methods) {
						fmt.Fprintf(out, "  method %s\n", kv)
					}
				}
				return nil
			}
			return errors.WithHint(errors.Newf("unknown format %q", format), "use text or toml")
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or toml")
	return cmd
}

func sortedPairs(m map[string]string) []string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+" -> "+strings.TrimSpace(v))
	}
	sort.Strings(pairs)
	return pairs
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/untangle"
	"github.com/deepnoodle-ai/untangle/transform"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the available passes",
	Long: `List the available passes in their default pipeline order.

Passes tagged unsafe only run when --unsafe is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPasses(cmd.OutOrStdout(), untangle.DefaultRegistry())
	},
}

func init() {
	rootCmd.AddCommand(passesCmd)
}

func listPasses(w io.Writer, r *transform.Registry) error {
	for _, t := range r.All() {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			if tag == transform.Unsafe {
				tags[i] = yellow(string(tag))
			} else {
				tags[i] = green(string(tag))
			}
		}
		if _, err := fmt.Fprintf(w, "%-24s %s\n", t.Name, strings.Join(tags, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func passNames() []string {
	return untangle.DefaultRegistry().Names()
}

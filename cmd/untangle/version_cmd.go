package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		return printVersion(cmd.OutOrStdout(), format)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringP("output", "o", "text", "output format (json or text)")
}

func printVersion(w io.Writer, format string) error {
	switch format {
	case "json":
		data, err := marshalJSON(map[string]string{
			"version": version,
			"commit":  commit,
			"date":    date,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text", "":
		_, err := fmt.Fprintf(w, "untangle %s (commit %s, built %s)\n", version, commit, date)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

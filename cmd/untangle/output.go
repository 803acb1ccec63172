package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"

	"github.com/deepnoodle-ai/untangle/transform"
)

var statsFormats = []string{"json", "text"}

type fileStats struct {
	File  string            `json:"file"`
	Error string            `json:"error,omitempty"`
	Run   *transform.Result `json:"result,omitempty"`
}

func collectStats(results []fileResult) []fileStats {
	stats := make([]fileStats, len(results))
	for i, r := range results {
		stats[i] = fileStats{File: r.input.display(), Run: r.result}
		if r.err != nil {
			stats[i].Error = r.err.Error()
		}
	}
	return stats
}

func writeStats(w io.Writer, format string, results []fileResult) error {
	stats := collectStats(results)
	switch strings.ToLower(format) {
	case "json":
		data, err := marshalJSON(stats)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text":
		for _, s := range stats {
			writeTextStats(w, s)
		}
		return nil
	default:
		return fmt.Errorf("unknown stats format: %s", format)
	}
}

func writeTextStats(w io.Writer, s fileStats) {
	if s.Error != "" {
		fmt.Fprintf(w, "%s: %s\n", bold(s.File), red(s.Error))
		return
	}
	status := green("converged")
	if !s.Run.Converged {
		status = yellow("not converged")
	}
	fmt.Fprintf(w, "%s: %d changes, %d iterations, %s\n", bold(s.File), s.Run.Total(), s.Run.Iterations, status)
	for _, p := range s.Run.Passes {
		fmt.Fprintf(w, "  %-24s %d\n", p.Name, p.Changes)
	}
}

func marshalJSON(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/deepnoodle-ai/untangle"
	"github.com/deepnoodle-ai/untangle/deobfuscate"
	"github.com/deepnoodle-ai/untangle/metrics"
	"github.com/deepnoodle-ai/untangle/transform"
)

// settings holds the resolved command line and config file values.
type settings struct {
	passes         []string
	unsafe         bool
	decoders       string
	maxIterations  int
	sandboxTimeout time.Duration
	sandboxMaxSize int
	output         string
	stats          string
	jobs           int
	metrics        bool
	verbose        bool
}

func loadSettings() *settings {
	return &settings{
		passes:         viper.GetStringSlice("passes"),
		unsafe:         viper.GetBool("unsafe"),
		decoders:       viper.GetString("decoders"),
		maxIterations:  viper.GetInt("max-iterations"),
		sandboxTimeout: viper.GetDuration("sandbox-timeout"),
		sandboxMaxSize: viper.GetInt("sandbox-max-size"),
		output:         viper.GetString("output"),
		stats:          viper.GetString("stats"),
		jobs:           viper.GetInt("jobs"),
		metrics:        viper.GetBool("metrics"),
		verbose:        viper.GetBool("verbose"),
	}
}

// input is one source to process. Name is empty for --code and --stdin.
type input struct {
	name   string
	source string
}

func (in input) display() string {
	if in.name == "" {
		return "<input>"
	}
	return in.name
}

// fileResult is the outcome of processing one input.
type fileResult struct {
	input  input
	output string
	result *transform.Result
	err    error
}

func runHandler(cmd *cobra.Command, args []string) error {
	inputs, err := readInputs(cmd, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return run(cmd.Context(), loadSettings(), inputs, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func readInputs(cmd *cobra.Command, args []string, stdin io.Reader) ([]input, error) {
	var codeFlagSet, stdinFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	sources := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, len(args) > 0} {
		if set {
			sources++
		}
	}
	switch {
	case sources > 1:
		return nil, errors.New("multiple input sources specified")
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return []input{{source: code}}, nil
	case stdinFlagSet:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return []input{{source: string(data)}}, nil
	case len(args) == 0:
		// Read piped input without --stdin.
		if f, ok := stdin.(*os.File); ok && !isTerminal(f) {
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}
			return []input{{source: string(data)}}, nil
		}
		return nil, errors.New("no input: pass files, --code or --stdin")
	}
	inputs := make([]input, len(args))
	for i, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		inputs[i] = input{name: path, source: string(data)}
	}
	return inputs, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (s *settings) options(log zerolog.Logger) ([]untangle.Option, error) {
	opts := []untangle.Option{
		untangle.WithLogger(log),
		untangle.WithMaxIterations(s.maxIterations),
		untangle.WithSandboxTimeout(s.sandboxTimeout),
		untangle.WithSandboxMaxSize(s.sandboxMaxSize),
	}
	if len(s.passes) > 0 {
		opts = append(opts, untangle.WithPasses(s.passes...))
	}
	if s.unsafe {
		opts = append(opts, untangle.WithUnsafe())
	}
	if s.decoders != "" {
		catalog, err := deobfuscate.LoadCatalogFile(s.decoders)
		if err != nil {
			return nil, err
		}
		opts = append(opts, untangle.WithDecoders(catalog))
	}
	return opts, nil
}

func run(ctx context.Context, s *settings, inputs []input, stdout, stderr io.Writer) error {
	log := newLogger(stderr, s.verbose)
	opts, err := s.options(log)
	if err != nil {
		return err
	}
	var recorder *metrics.Recorder
	if s.metrics {
		recorder = metrics.NewRecorder(nil)
		opts = append(opts, untangle.WithRecorder(recorder))
	}
	if len(inputs) > 1 && s.output == "" {
		return errors.New("--output directory required when processing several files")
	}

	results := make([]fileResult, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(max(1, s.jobs))
	for i, in := range inputs {
		g.Go(func() error {
			fileOpts := slices.Concat(opts, []untangle.Option{untangle.WithFilename(in.name)})
			out, result, err := untangle.DeobfuscateSource(ctx, in.source, fileOpts...)
			results[i] = fileResult{input: in, output: out, result: result, err: err}
			if err == nil {
				log.Debug().Str("file", in.display()).Int("changes", result.Total()).Msg("processed")
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs *multierror.Error
	for _, r := range results {
		if r.err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.input.display(), r.err))
			continue
		}
		if !r.result.Converged {
			log.Warn().Str("file", r.input.display()).Msg("iteration cap reached; output may simplify further")
		}
	}
	if err := writeOutputs(s.output, results, stdout); err != nil {
		errs = multierror.Append(errs, err)
	}
	if s.stats != "" {
		if err := writeStats(stderr, s.stats, results); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if recorder != nil {
		if err := recorder.Write(stderr); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// writeOutputs writes successful results. A single result goes to stdout or
// the output file; several results go into the output directory under their
// base names.
func writeOutputs(output string, results []fileResult, stdout io.Writer) error {
	if len(results) == 1 && (output == "" || !isDir(output)) {
		r := results[0]
		if r.err != nil {
			return nil
		}
		if output == "" {
			_, err := fmt.Fprintln(stdout, r.output)
			return err
		}
		return os.WriteFile(output, []byte(r.output+"\n"), 0o644)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	paths := make([]string, len(results))
	seen := map[string]string{}
	for i, r := range results {
		if r.err != nil {
			continue
		}
		base := "out.js"
		if r.input.name != "" {
			base = filepath.Base(r.input.name)
		}
		if prev, ok := seen[base]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, r.input.name, base)
		}
		seen[base] = r.input.name
		paths[i] = filepath.Join(output, base)
	}
	for i, r := range results {
		if r.err != nil {
			continue
		}
		if err := os.WriteFile(paths[i], []byte(r.output+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

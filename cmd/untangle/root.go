package main

import (
	"errors"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/untangle/sandbox"
	"github.com/deepnoodle-ai/untangle/transform"
)

var rootCmd = &cobra.Command{
	Use:   "untangle [file ...]",
	Short: "Deobfuscate and unminify JavaScript",
	Long: `Rewrite obfuscated and minified JavaScript back into readable code.

Source is read from the given files, from --code, or from stdin with --stdin.
Safe passes always run. Passes that can change behavior in rare cases, such
as template literal reconstruction and decoder inlining, need --unsafe.

Every flag can also be set in $HOME/.untangle.yaml or through an environment
variable such as UNTANGLE_MAX_ITERATIONS.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
	},
	RunE: runHandler,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.untangle.yaml)")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("verbose", "v", false, "log pass activity to stderr")

	f := rootCmd.Flags()
	f.StringP("code", "c", "", "source code to process")
	f.Bool("stdin", false, "read source from stdin")
	f.StringSlice("passes", nil, "passes to run, in order (default: every enabled pass)")
	f.Bool("unsafe", false, "enable passes tagged unsafe")
	f.String("decoders", "", "YAML decoder catalog used by inline-decoded-strings")
	f.Int("max-iterations", transform.DefaultMaxIterations, "pipeline iteration cap")
	f.Duration("sandbox-timeout", sandbox.DefaultTimeout, "time budget of each decoder evaluation")
	f.Int("sandbox-max-size", sandbox.DefaultMaxSize, "largest decoder source, argument or result in bytes")
	f.StringP("output", "o", "", "output file, or directory when processing several files")
	f.String("stats", "", "print per-file pass statistics to stderr (text or json)")
	f.IntP("jobs", "j", runtime.NumCPU(), "number of files processed in parallel")
	f.Bool("metrics", false, "print Prometheus metrics to stderr when done")

	_ = viper.BindPFlags(pf)
	_ = viper.BindPFlags(f)

	_ = rootCmd.RegisterFlagCompletionFunc("stats", cobra.FixedCompletions(statsFormats, cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.RegisterFlagCompletionFunc("passes", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return passNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".untangle")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("untangle")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if viper.GetString("config") != "" || !errors.As(err, &notFound) {
			fatal(err)
		}
	}
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

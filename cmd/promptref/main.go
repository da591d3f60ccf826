package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/promptref/internal/config"
	"github.com/gubarz/promptref/internal/logging"
	"github.com/gubarz/promptref/internal/metrics"
	"github.com/gubarz/promptref/internal/prompt"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "promptref",
	Short: "Markdown link decoder and prompt reference resolver",
	Long: `Decodes Markdown links from a token stream and follows the
#file: and [caption](path) references between prompt files.

Inspect tokens and links of a single file, resolve the whole reference
tree, watch it for changes, or browse it interactively.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(tokensCmd, linksCmd, resolveCmd, watchCmd, browseCmd)

	rootCmd.PersistentFlags().String("extension", "", "Suffix identifying prompt files (default .prompt.md)")
	rootCmd.PersistentFlags().Int("max-depth", 0, "Maximum reference depth (default 32)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Sibling references resolved at once (default 4)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	bindFlag("extension", "extension")
	bindFlag("max_depth", "max-depth")
	bindFlag("concurrency", "concurrency")
	bindFlag("log_level", "log-level")
	bindFlag("log_format", "log-format")
}

// bindFlag ties a persistent flag to a config key; unset flags keep the
// config or default value
func bindFlag(key, flag string) {
	viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// newLogger writes structured logs to stderr so stdout stays parseable
func newLogger() *slog.Logger {
	return logging.New(os.Stderr, config.GetLogLevel(), config.GetLogFormat())
}

// newResolver builds a resolver from the effective configuration
func newResolver(logger *slog.Logger, rec *metrics.Recorder) *prompt.Resolver {
	return prompt.NewResolver(
		prompt.WithExtension(config.GetExtension()),
		prompt.WithMaxDepth(config.GetMaxDepth()),
		prompt.WithConcurrency(config.GetConcurrency()),
		prompt.WithLogger(logger),
		prompt.WithRecorder(rec),
	)
}

// targetPath returns the positional path, or the configured one
func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.GetPath()
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

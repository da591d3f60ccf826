package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Path          string        `mapstructure:"path"`
	Extension     string        `mapstructure:"extension"`
	MaxDepth      int           `mapstructure:"max_depth"`
	Concurrency   int           `mapstructure:"concurrency"`
	Format        string        `mapstructure:"format"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	MetricsAddr   string        `mapstructure:"metrics_addr"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	Output        string        `mapstructure:"output"`
	Editor        string        `mapstructure:"editor"`
	ColorOK       string        `mapstructure:"color_ok"`
	ColorError    string        `mapstructure:"color_error"`
	ColorPath     string        `mapstructure:"color_path"`
	ColorDim      string        `mapstructure:"color_dim"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	SetDefaults()

	viper.SetConfigName("promptref")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "promptref"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PROMPTREF")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("path", ".")
	viper.SetDefault("extension", ".prompt.md")
	viper.SetDefault("max_depth", 32)
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("format", "tree")          // tree, json, yaml
	viper.SetDefault("log_level", "info")       // debug, info, warn, error
	viper.SetDefault("log_format", "text")      // text, json
	viper.SetDefault("metrics_addr", "")        // e.g. :9090, empty disables
	viper.SetDefault("watch_debounce", "250ms") // Delay before re-resolving
	viper.SetDefault("output", "print")         // print, copy, edit
	viper.SetDefault("editor", "")              // Falls back to $VISUAL, $EDITOR, vi
	viper.SetDefault("color_ok", "32")          // Green
	viper.SetDefault("color_error", "31")       // Red
	viper.SetDefault("color_path", "36")        // Cyan
	viper.SetDefault("color_dim", "90")         // Gray
}

// GetPath returns the default prompt path with tilde expansion
func GetPath() string {
	return expandTilde(viper.GetString("path"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetExtension returns the suffix identifying prompt files
func GetExtension() string {
	return viper.GetString("extension")
}

// GetMaxDepth returns how deep references are followed
func GetMaxDepth() int {
	return viper.GetInt("max_depth")
}

// GetConcurrency returns how many sibling references resolve at once
func GetConcurrency() int {
	return viper.GetInt("concurrency")
}

// GetFormat returns the output format of resolve
func GetFormat() string {
	return viper.GetString("format")
}

func GetLogLevel() string {
	return viper.GetString("log_level")
}

func GetLogFormat() string {
	return viper.GetString("log_format")
}

// GetMetricsAddr returns the listen address of the metrics endpoint
func GetMetricsAddr() string {
	return viper.GetString("metrics_addr")
}

// GetWatchDebounce returns the delay between a change and a re-resolve
func GetWatchDebounce() time.Duration {
	return viper.GetDuration("watch_debounce")
}

// GetOutput returns how a chosen file is handed back (print, copy, edit)
func GetOutput() string {
	return viper.GetString("output")
}

// GetEditor returns the editor command, falling back to the environment
func GetEditor() string {
	if e := viper.GetString("editor"); e != "" {
		return e
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// GetColorOK returns ANSI color code for resolved references
func GetColorOK() string {
	return viper.GetString("color_ok")
}

// GetColorError returns ANSI color code for failed references
func GetColorError() string {
	return viper.GetString("color_error")
}

// GetColorPath returns ANSI color code for paths
func GetColorPath() string {
	return viper.GetString("color_path")
}

// GetColorDim returns ANSI color code for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// SetFormat sets the output format at runtime
func SetFormat(format string) {
	viper.Set("format", format)
	C.Format = format
}

// SetOutput sets the output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetPath sets path at runtime
func SetPath(path string) {
	viper.Set("path", path)
	C.Path = path
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dhcgn/email-features/features"
	"github.com/dhcgn/email-features/filter"
)

// Config captures the options shared by all commands.
type Config struct {
	ConfigFile    string
	LogLevel      string
	LogDir        string
	DataDir       string
	TopN          int
	HTMLFallback  bool
	MaxDepth      int
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// FilterOptions returns the include/exclude patterns as filter options.
func (c Config) FilterOptions() filter.Options {
	return filter.Options{
		IncludeHeader: c.IncludeHeader,
		IncludeBody:   c.IncludeBody,
		ExcludeHeader: c.ExcludeHeader,
		ExcludeBody:   c.ExcludeBody,
	}
}

// ExtractorOptions returns the parsing policy.
func (c Config) ExtractorOptions() features.Options {
	return features.Options{HTMLFallback: c.HTMLFallback, MaxDepth: c.MaxDepth}
}

// RegisterFlags attaches the global flags to the root command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML or JSON config file")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs go to stderr only when empty)")
	flags.String("data-dir", "data", "Directory for sample and exported datasets")
}

// RegisterTopFlag adds --top to commands that print ranked lists.
func RegisterTopFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("top", "t", 10, "Number of top items to display")
}

// RegisterExtractFlags adds the parsing and filtering flags.
func RegisterExtractFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool("html-fallback", false, "Use the text of the first HTML part when a multipart message has no plain text part")
	flags.Int("max-depth", features.DefaultMaxDepth, "Maximum multipart nesting depth")
	flags.StringArray("include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with
// validation. Values from --config fill every flag that was not set
// explicitly.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	cfg := Config{TopN: 10, DataDir: "data", LogLevel: "info", MaxDepth: features.DefaultMaxDepth}
	if err := applyFlags(&cfg, flags, false); err != nil {
		return Config{}, err
	}

	if cfg.ConfigFile != "" {
		fc, err := LoadConfigFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
		ApplyFileConfig(&cfg, fc)
		if err := applyFlags(&cfg, flags, true); err != nil {
			return Config{}, err
		}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.DataDir != "" {
		cfg.DataDir = filepath.Clean(cfg.DataDir)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyFlags copies registered flag values into cfg. With onlyChanged set,
// flags left at their default are skipped.
func applyFlags(cfg *Config, flags *pflag.FlagSet, onlyChanged bool) error {
	use := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && (!onlyChanged || f.Changed)
	}

	var err error
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{"config", &cfg.ConfigFile},
		{"log-level", &cfg.LogLevel},
		{"log-dir", &cfg.LogDir},
		{"data-dir", &cfg.DataDir},
	} {
		if use(s.name) {
			if *s.dst, err = flags.GetString(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range []struct {
		name string
		dst  *[]string
	}{
		{"include-header", &cfg.IncludeHeader},
		{"include-body", &cfg.IncludeBody},
		{"exclude-header", &cfg.ExcludeHeader},
		{"exclude-body", &cfg.ExcludeBody},
	} {
		if !use(s.name) {
			continue
		}
		values, err := flags.GetStringArray(s.name)
		if err != nil {
			return err
		}
		if len(values) > 0 {
			*s.dst = values
		}
	}

	if use("top") {
		if cfg.TopN, err = flags.GetInt("top"); err != nil {
			return err
		}
	}
	if use("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return err
		}
	}
	if use("html-fallback") {
		if cfg.HTMLFallback, err = flags.GetBool("html-fallback"); err != nil {
			return err
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.TopN < 0 {
		return fmt.Errorf("--top must not be negative")
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("--max-depth must be positive")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}

	includeActive := len(cfg.IncludeHeader) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeHeader) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dkoosis/resusage/pkg/resource"
)

// Sources of a resolved value, logged with --log-level debug.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	ConfigPath   string
	Output       string
	Format       string
	Theme        string
	QualifyNames bool
	Passthrough  bool
	Strict       bool
	LogLevel     string

	// Flags to track if they were explicitly set by the user
	OutputSet      bool
	FormatSet      bool
	ThemeSet       bool
	QualifyNameSet bool
	PassthroughSet bool
	StrictSet      bool
	LogLevelSet    bool
}

// ResolvedConfig holds the final configuration after applying all priority rules.
type ResolvedConfig struct {
	Output       string
	Format       string
	Theme        string
	QualifyNames bool
	Passthrough  bool
	Strict       bool
	LogLevel     string
	Keywords     map[string]string

	// ConfigFile is the file that was read, or "".
	ConfigFile string
	// Sources records where each setting came from, keyed by yaml name.
	Sources map[string]string
}

// ResolveConfig resolves configuration from all sources with explicit priority order.
func ResolveConfig(flags CliFlags) (*ResolvedConfig, error) {
	appCfg, path, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	r := &ResolvedConfig{
		Keywords:   appCfg.Keywords,
		ConfigFile: path,
		Sources:    make(map[string]string),
	}

	r.Output, r.Sources["output"] = resolveString(flags.Output, flags.OutputSet, "RESUSAGE_OUTPUT", appCfg.Output, DefaultOutput)
	r.Format, r.Sources["format"] = resolveString(flags.Format, flags.FormatSet, "RESUSAGE_FORMAT", appCfg.Format, DefaultFormat)
	r.Theme, r.Sources["theme"] = resolveString(flags.Theme, flags.ThemeSet, "RESUSAGE_THEME", appCfg.Theme, DefaultTheme)
	r.LogLevel, r.Sources["log_level"] = resolveString(flags.LogLevel, flags.LogLevelSet, "RESUSAGE_LOG_LEVEL", appCfg.LogLevel, DefaultLogLevel)
	r.QualifyNames, r.Sources["qualify_names"] = resolveBool(flags.QualifyNames, flags.QualifyNameSet, "RESUSAGE_QUALIFY", appCfg.QualifyNames)
	r.Passthrough, r.Sources["passthrough"] = resolveBool(flags.Passthrough, flags.PassthroughSet, "RESUSAGE_PASSTHROUGH", appCfg.Passthrough)
	r.Strict, r.Sources["strict"] = resolveBool(flags.Strict, flags.StrictSet, "RESUSAGE_STRICT", appCfg.Strict)

	// NO_COLOR beats everything but an explicit --theme.
	if !flags.ThemeSet && os.Getenv("NO_COLOR") != "" {
		r.Theme, r.Sources["theme"] = "mono", SourceEnv
	}

	if err := validateResolvedConfig(r); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return r, nil
}

// Mapper builds the keyword registry: built-ins plus configured keywords.
func (r *ResolvedConfig) Mapper() (*resource.Mapper, error) {
	m := resource.DefaultMapper()
	if err := m.RegisterKinds(r.Keywords); err != nil {
		return nil, fmt.Errorf("config keywords: %w", err)
	}
	return m, nil
}

// Level returns the slog level for LogLevel.
func (r *ResolvedConfig) Level() slog.Level {
	lvl, _ := parseLevel(r.LogLevel)
	return lvl
}

func resolveString(cli string, cliSet bool, envKey, file, def string) (string, string) {
	if cliSet {
		return cli, SourceCLI
	}
	if v := os.Getenv(envKey); v != "" {
		return v, SourceEnv
	}
	if file != "" {
		return file, SourceFile
	}
	return def, SourceDefault
}

func resolveBool(cli, cliSet bool, envKey string, file *bool) (bool, string) {
	if cliSet {
		return cli, SourceCLI
	}
	if b := getEnvBool(envKey); b != nil {
		return *b, SourceEnv
	}
	if file != nil {
		return *file, SourceFile
	}
	return false, SourceDefault
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q (must be: debug, info, warn, error)", s)
	}
}

// validateResolvedConfig validates the resolved configuration and returns errors for invalid states.
func validateResolvedConfig(cfg *ResolvedConfig) error {
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	validFormats := map[string]bool{"auto": true, "terminal": true, "llm": true, "json": true}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid format value: %s (must be: auto, terminal, llm, json)", cfg.Format)
	}

	validThemes := map[string]bool{"default": true, "orca": true, "mono": true}
	if !validThemes[cfg.Theme] {
		return fmt.Errorf("invalid theme value: %s (must be: default, orca, mono)", cfg.Theme)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}

	for keyword, kind := range cfg.Keywords {
		if _, err := resource.ParseKind(kind); err != nil {
			return fmt.Errorf("keyword %q: %w", keyword, err)
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables that override
// settings, e.g. ACTIONREF_LOG_LEVEL.
const EnvPrefix = "ACTIONREF"

// FileName is the base name of the settings file looked up in the project
// root.
const FileName = "actionref"

// Setting keys. Flags use the same names.
const (
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeySchemasPath = "schemas-path"
	KeyWorkers     = "workers"
	KeyDocsDir     = "docs-dir"
	KeyEnvironment = "env"
	KeyColor       = "color"
)

// Settings are the resolved tool settings.
type Settings struct {
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	SchemasPath string `mapstructure:"schemas-path"`
	Workers     int    `mapstructure:"workers"`
	DocsDir     string `mapstructure:"docs-dir"`
	Environment string `mapstructure:"env"`
	Color       bool   `mapstructure:"color"`

	// File is the settings file that was read, empty if there was none.
	File string `mapstructure:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		KeyLogLevel:    "info",
		KeyLogFormat:   "text",
		KeySchemasPath: "",
		KeyWorkers:     4,
		KeyDocsDir:     "docs/reference",
		KeyEnvironment: "",
		KeyColor:       false,
	}
}

// Options tell Load where to look.
type Options struct {
	// ProjectDir is searched for actionref.yaml when File is empty.
	ProjectDir string
	// File is an explicit settings file. It must exist.
	File string
	// Flags holds the flags that were set on the command line.
	Flags map[string]any
	// Environ replaces the process environment when not nil. It takes
	// "KEY=value" pairs like os.Environ.
	Environ []string
}

// Load resolves the settings.
func Load(opts Options) (*Settings, error) {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if opts.Environ == nil {
		v.AutomaticEnv()
	} else {
		// viper only reads the process environment, so explicit pairs are
		// applied as overrides below the flags.
		for _, kv := range opts.Environ {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(name, EnvPrefix+"_") {
				continue
			}
			key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix+"_")), "_", "-")
			if _, known := Defaults()[key]; known {
				v.Set(key, value)
			}
		}
	}

	switch {
	case opts.File != "":
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", opts.File, err)
		}
	case opts.ProjectDir != "":
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(opts.ProjectDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read settings file in %s: %w", opts.ProjectDir, err)
			}
		}
	}

	for k, val := range opts.Flags {
		v.Set(k, val)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.File = v.ConfigFileUsed()
	return &s, nil
}

// Package config handles global mvtag configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/mvtag/internal/multivalue"
)

// Environment variables that override the config file.
const (
	EnvConfig   = "MVTAG_CONFIG"
	EnvLibrary  = "MVTAG_LIBRARY"
	EnvLogLevel = "MVTAG_LOG_LEVEL"
)

// DefaultPathFormat is used when [paths] default is not set.
const DefaultPathFormat = "$albumartist/$album/$track $title"

// Config represents the global mvtag configuration.
type Config struct {
	// Library is the path of the SQLite library database.
	Library string `toml:"library"`

	// Directory is the root music directory files are moved into.
	Directory string `toml:"directory"`

	// Write controls whether tags are written to files after a change.
	Write bool `toml:"write"`

	// Move controls whether files are moved to match the path format.
	Move bool `toml:"move"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// FieldsFile is an optional YAML file overriding the tag mapping.
	FieldsFile string `toml:"fields_file"`

	Multivalue MultivalueConfig `toml:"multivalue"`
	Paths      PathsConfig      `toml:"paths"`
	UI         UIConfig         `toml:"ui"`
}

// MultivalueConfig configures which string fields accept add/remove.
type MultivalueConfig struct {
	// FixMediaFields maps grouping and work to their proper tag frames.
	FixMediaFields bool `toml:"fix_media_fields"`

	// StringFields maps a field name to the delimiter joining its values.
	StringFields map[string]string `toml:"string_fields"`
}

// PathsConfig controls library file layout.
type PathsConfig struct {
	Default string `toml:"default"`
	Slugify bool   `toml:"slugify"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Library:  defaultLibraryPath(),
		Write:    true,
		LogLevel: "warn",
		Paths:    PathsConfig{Default: DefaultPathFormat},
	}
}

// Load loads the configuration from the default location, applying
// environment overrides. Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath loads the configuration from explicitPath, $MVTAG_CONFIG, or the
// default location, in that order. A missing file is only an error when the
// path was given explicitly.
func LoadPath(explicitPath string) (*Config, error) {
	path := ResolvePath(explicitPath)

	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if strings.TrimSpace(explicitPath) != "" {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		cfg = Default()
	} else {
		loaded, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := LoadDotEnvForConfig(path); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.expandPaths()
	return cfg, nil
}

// LoadFrom loads the configuration from a specific path. Environment
// overrides are not applied.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Paths.Default) == "" {
		cfg.Paths.Default = DefaultPathFormat
	}
	return cfg, nil
}

// ResolvePath resolves the effective config path from an optional override.
func ResolvePath(explicitPath string) string {
	if p := strings.TrimSpace(explicitPath); p != "" {
		return ExpandHome(p)
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return ExpandHome(p)
	}
	return DefaultPath()
}

// ApplyEnv overrides config values from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLibrary)); v != "" {
		c.Library = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) expandPaths() {
	c.Library = ExpandHome(c.Library)
	c.Directory = ExpandHome(c.Directory)
	c.FieldsFile = ExpandHome(c.FieldsFile)
}

// Declarations resolves the multi-value field declarations.
func (c *Config) Declarations() (multivalue.Declarations, error) {
	decls, err := multivalue.NewDeclarations(c.Multivalue.StringFields)
	if err != nil {
		return nil, fmt.Errorf("invalid [multivalue.string_fields]: %w", err)
	}
	return decls, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/mvtag/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "mvtag", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "mvtag", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

func defaultLibraryPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "mvtag", "library.db")
	}
	return "library.db"
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

const defaultConfigTemplate = `# mvtag configuration

# Library database
# library = "~/.local/share/mvtag/library.db"

# Music directory that moved files are placed under
# directory = "~/Music"

# Write tags to files / move files after modifying (overridable with -w/-W, -m/-M)
write = true
move = false

# debug, info, warn, error
log_level = "warn"

# Optional YAML file overriding how fields map to tag frames
# fields_file = "~/.config/mvtag/fields.yaml"

[multivalue]
# Write grouping and work to their dedicated tag frames
fix_media_fields = false

# String fields that accept += and -=, with the delimiter joining values
[multivalue.string_fields]
# genre = ","
# mood = ";"

[paths]
default = "$albumartist/$album/$track $title"
slugify = false

# [ui]
# accent = "39"
`

// CreateDefault writes a commented default config to path if it doesn't exist.
// An empty path means DefaultPath(). Returns the path used and whether it
// was created.
func CreateDefault(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loadable is a configuration struct that can normalize and check itself.
type Loadable interface {
	ApplyDefaults()
	Validate() error
}

// LoaderConfig controls where configuration is loaded from.
type LoaderConfig struct {
	// ConfigFile is the YAML configuration file path. Optional; when empty
	// only environment variables apply.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment before
	// reading. Optional.
	EnvFile string
	// EnvPrefix namespaces environment variable overrides, e.g. prefix
	// "HOOKHTTP" maps HOOKHTTP_TIMEOUT onto the "timeout" key.
	EnvPrefix string
}

// FileSystem abstracts file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Loader reads configuration into Loadable structs.
type Loader struct {
	FileSystem FileSystem
}

// NewLoader creates a loader backed by the real filesystem.
func NewLoader() *Loader {
	return &Loader{FileSystem: RealFileSystem{}}
}

// Load populates into from the configured sources, applies defaults, and
// validates. Precedence: environment overrides file values.
func (l *Loader) Load(into Loadable, opts LoaderConfig) error {
	fs := l.FileSystem
	if fs == nil {
		fs = RealFileSystem{}
	}

	if opts.EnvFile != "" {
		if !fs.Exists(opts.EnvFile) {
			return fmt.Errorf("config: env file not found: %s", opts.EnvFile)
		}
		if err := fs.LoadEnv(opts.EnvFile); err != nil {
			return fmt.Errorf("config: load env file: %w", err)
		}
	}

	v := viper.New()
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if opts.ConfigFile != "" {
		if !fs.Exists(opts.ConfigFile) {
			return fmt.Errorf("config: config file not found: %s", opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read config file: %w", err)
		}
	}

	if err := v.Unmarshal(into); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}

	into.ApplyDefaults()
	if err := into.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}

// Load is a convenience wrapper over a real-filesystem Loader.
func Load(into Loadable, opts LoaderConfig) error {
	return NewLoader().Load(into, opts)
}

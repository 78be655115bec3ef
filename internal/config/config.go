// Package config loads client settings from ~/.hfss/config.toml, HFSS_*
// environment variables and bound command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	configDir  = ".hfss"
	configFile = "config.toml"
	envPrefix  = "HFSS"

	dirMode  = 0o700
	fileMode = 0o600

	tempFilePattern = ".config-*.toml"
)

const (
	KeyHostProgID          = "host.prog_id"
	KeyHostEditor          = "host.editor"
	KeySolutionSetupSuffix = "solution.setup_suffix"
	KeySolutionExportDir   = "solution.export_dir"
	KeyTraceEnabled        = "trace.enabled"
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"
)

type Config struct {
	Host     HostConfig     `mapstructure:"host" toml:"host"`
	Solution SolutionConfig `mapstructure:"solution" toml:"solution"`
	Trace    TraceConfig    `mapstructure:"trace" toml:"trace"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

type HostConfig struct {
	ProgID string `mapstructure:"prog_id" toml:"prog_id"`
	Editor string `mapstructure:"editor" toml:"editor"`
}

type SolutionConfig struct {
	SetupSuffix string `mapstructure:"setup_suffix" toml:"setup_suffix"`
	ExportDir   string `mapstructure:"export_dir" toml:"export_dir"`
}

type TraceConfig struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

func Defaults() Config {
	return Config{
		Host: HostConfig{
			ProgID: "AnsoftHfss.HfssScriptInterface",
			Editor: "3D Modeler",
		},
		Solution: SolutionConfig{
			SetupSuffix: " : LastAdaptive",
			ExportDir:   os.TempDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// NewViper returns a viper instance reading from fs with defaults and
// environment overrides registered. Flags are bound by the caller.
func NewViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)

	d := Defaults()
	v.SetDefault(KeyHostProgID, d.Host.ProgID)
	v.SetDefault(KeyHostEditor, d.Host.Editor)
	v.SetDefault(KeySolutionSetupSuffix, d.Solution.SetupSuffix)
	v.SetDefault(KeySolutionExportDir, d.Solution.ExportDir)
	v.SetDefault(KeyTraceEnabled, d.Trace.Enabled)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// DefaultPath is ~/.hfss/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFile), nil
}

// Load reads path into v and decodes the result. A missing file is not an
// error: defaults and overrides still apply.
func Load(fs afero.Fs, v *viper.Viper, path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Config{}, err
		}
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}

	if exists {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

var ErrConfigExists = errors.New("config file already exists")

// Write stores cfg at path through a temp file and rename. It refuses to
// replace an existing file unless overwrite is set.
func Write(fs afero.Fs, path string, cfg Config, overwrite bool) error {
	if !overwrite {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return fmt.Errorf("stat config file: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := afero.TempFile(fs, filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = fs.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := fs.Chmod(tempName, fileMode); err != nil {
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := fs.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	return string(data), nil
}

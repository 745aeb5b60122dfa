// Package config loads bamlink's configuration: built-in defaults,
// optionally overlaid with a user config file, with command-line flags
// applied on top by the CLI layer.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/seqops/bamlink/pkg/errors"
)

// UserConfigName is the file name looked up under the XDG config dir.
const UserConfigName = "bamlink.toml"

// Config is the effective bamlink configuration.
type Config struct {
	RunsDir       string   `koanf:"runsdir" toml:"runsdir"`
	OutDir        string   `koanf:"outdir" toml:"outdir"`
	ScanSubdir    string   `koanf:"scan_subdir" toml:"scan_subdir"`
	ProjectPrefix string   `koanf:"project_prefix" toml:"project_prefix"`
	SampleRegex   string   `koanf:"sample_regex" toml:"sample_regex"`
	ExcludeDirs   []string `koanf:"exclude_dirs" toml:"exclude_dirs"`
	Suffixes      []string `koanf:"suffixes" toml:"suffixes"`
}

// Load builds the configuration by layering, lowest to highest
// precedence: embedded defaults, then the user config file. path, if
// non-empty, names an explicit config file and must exist; otherwise the
// default user config location is used when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	} else {
		userPath := filepath.Join(xdg.ConfigHome, "bamlink", UserConfigName)
		if _, err := os.Stat(userPath); err == nil {
			if err := k.Load(file.Provider(userPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", userPath)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal config")
	}

	return &cfg, nil
}

// CompileSampleRegex compiles the configured sample pattern. An invalid
// pattern is a configuration error, surfaced before any filesystem work.
func (c *Config) CompileSampleRegex() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.SampleRegex)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid sample regex %q", c.SampleRegex)
	}
	return re, nil
}

// TOML renders the effective configuration as TOML, as printed by the
// genconfig command.
func (c *Config) TOML() (string, error) {
	out, err := gotoml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to marshal config")
	}
	return string(out), nil
}

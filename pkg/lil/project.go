package lil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = "lil.toml"

// ProjectConfig represents a lil.toml project configuration file. Unset
// fields leave the defaults alone.
type ProjectConfig struct {
	// Typecheck runs the type checker before evaluating.
	Typecheck *bool `toml:"typecheck,omitempty"`

	// Strict makes a type error fatal. When false, type errors are logged
	// and the program is evaluated anyway.
	Strict *bool `toml:"strict,omitempty"`

	// PrintType prints the inferred type next to each result.
	PrintType *bool `toml:"print_type,omitempty"`
}

// RunConfig controls how a program is run.
type RunConfig struct {
	Typecheck bool
	Strict    bool
	PrintType bool
	Debug     bool
}

// DefaultRunConfig checks every program strictly before running it.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Typecheck: true,
		Strict:    true,
	}
}

// Apply overrides cfg with every field set in the project config.
func (pc *ProjectConfig) Apply(cfg *RunConfig) {
	if pc == nil {
		return
	}
	if pc.Typecheck != nil {
		cfg.Typecheck = *pc.Typecheck
	}
	if pc.Strict != nil {
		cfg.Strict = *pc.Strict
	}
	if pc.PrintType != nil {
		cfg.PrintType = *pc.PrintType
	}
}

// LoadProjectConfig loads a lil.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown key in project config", "path", path, "key", key.String())
	}
	return &config, nil
}

// FindProjectConfig searches for a lil.toml file starting from dir and
// walking up to parent directories. Returns the path to lil.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// ApplyEnv overrides cfg from LIL_TYPECHECK and LIL_STRICT.
func ApplyEnv(cfg *RunConfig) error {
	for name, dest := range map[string]*bool{
		"LIL_TYPECHECK": &cfg.Typecheck,
		"LIL_STRICT":    &cfg.Strict,
	} {
		raw, set := os.LookupEnv(name)
		if !set || raw == "" {
			continue
		}
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dest = val
	}
	return nil
}

// LoadRunConfig resolves the configuration for programs in dir: defaults,
// then the nearest lil.toml, then the environment.
func LoadRunConfig(dir string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	path, project, err := FindProjectConfig(dir)
	if err != nil {
		return cfg, err
	}
	if project != nil {
		slog.Debug("loaded project config", "path", path)
		project.Apply(&cfg)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

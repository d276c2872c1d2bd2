package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "condflow.toml"

// fileConfig mirrors condflow.toml. Presence of a key is checked through the
// TOML metadata, so zero values in the file are honoured.
type fileConfig struct {
	Flow        flowConfig        `toml:"flow"`
	Diagnostics diagnosticsConfig `toml:"diagnostics"`
	Build       buildConfig       `toml:"build"`
}

type flowConfig struct {
	FakeReachable  bool `toml:"fake_reachable"`
	ReportDeadCode bool `toml:"report_dead_code"`
}

type diagnosticsConfig struct {
	Max              int  `toml:"max"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

type buildConfig struct {
	Jobs      int    `toml:"jobs"`
	Cache     bool   `toml:"cache"`
	CacheSize int    `toml:"cache_size_mb"`
	DiskCache bool   `toml:"disk_cache"`
	CacheDir  string `toml:"cache_dir"`
}

// loadedConfig is a parsed config file together with the keys it set.
type loadedConfig struct {
	Path   string
	Config fileConfig
	meta   toml.MetaData
}

func (c *loadedConfig) isSet(key ...string) bool {
	return c != nil && c.meta.IsDefined(key...)
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path, or the nearest condflow.toml above startDir when
// path is empty. A missing file found by search is not an error.
func loadConfig(path, startDir string) (*loadedConfig, error) {
	if path == "" {
		found, ok, err := findConfig(startDir)
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: build.jobs must not be negative", path)
	}
	if cfg.Diagnostics.Max < 0 {
		return nil, fmt.Errorf("%s: diagnostics.max must not be negative", path)
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}

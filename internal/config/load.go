package config

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFile = appName + ".yaml"
	envPrefix  = "DATAGRID_"
)

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the process wide configuration, loading it from the default
// paths on first use.
func Get() (*Config, error) {
	once.Do(func() {
		instance, loadErr = Load(ConfigPaths()...)
	})
	return instance, loadErr
}

// GlobalConfigPath returns the path of the user configuration file.
func GlobalConfigPath() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName, configFile)
	}
	// for windows it lives in `%LOCALAPPDATA%/datagrid/`
	if runtime.GOOS == "windows" {
		localAppData := cmp.Or(
			os.Getenv("LOCALAPPDATA"),
			filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local"),
		)
		return filepath.Join(localAppData, appName, configFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, configFile)
}

// DataDir returns the directory logs are written to by default.
func DataDir() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName)
	}
	if runtime.GOOS == "windows" {
		localAppData := cmp.Or(
			os.Getenv("LOCALAPPDATA"),
			filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local"),
		)
		return filepath.Join(localAppData, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// LocalConfigPath returns the project configuration file in dir.
func LocalConfigPath(dir string) string {
	return filepath.Join(dir, "."+configFile)
}

// ConfigPaths returns the configuration files in the order they are merged.
// A DATAGRID_CONFIG file replaces both.
func ConfigPaths() []string {
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		return []string{path}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return []string{GlobalConfigPath()}
	}
	return []string{GlobalConfigPath(), LocalConfigPath(cwd)}
}

// Load reads the configuration files over the defaults, applies the
// environment overrides and validates the result.
func Load(paths ...string) (*Config, error) {
	cfg, err := loadFromConfigPaths(paths)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromConfigPaths(paths []string) (*Config, error) {
	cfg := Defaults()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	intVar := func(name string, dst *int) {
		v := getenv(envPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			return
		}
		*dst = n
	}
	boolVar := func(name string, dst *bool) {
		v := getenv(envPrefix + name)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			return
		}
		*dst = b
	}

	t := &c.Table
	intVar("ROW_HEIGHT", &t.RowHeight)
	intVar("HEADER_HEIGHT", &t.HeaderHeight)
	intVar("COLUMN_WIDTH", &t.ColumnWidth)
	intVar("MAX_CACHE_LINES", &t.MaxCacheLines)
	boolVar("KEEP_FIRST_ROW_COMPLETE", &t.KeepFirstRowComplete)
	boolVar("LIVE_RESIZE", &t.LiveResize)
	boolVar("ALWAYS_UPDATE_CELLS", &t.AlwaysUpdateCells)
	boolVar("STATUS_BAR", &t.StatusBarVisible)
	t.SelectionMode = cmp.Or(getenv(envPrefix+"SELECTION_MODE"), t.SelectionMode)
	if v := getenv(envPrefix + "UPDATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sUPDATE_INTERVAL: %w", envPrefix, err))
		} else {
			t.UpdateInterval = d
		}
	}
	if v := getenv(envPrefix + "META_COLUMNS"); v != "" {
		var meta []int
		for field := range strings.SplitSeq(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				errs = append(errs, fmt.Errorf("%sMETA_COLUMNS: %w", envPrefix, err))
				break
			}
			meta = append(meta, n)
		}
		t.MetaColumns = meta
	}

	c.Log.File = cmp.Or(getenv(envPrefix+"LOG_FILE"), c.Log.File)
	boolVar("DEBUG", &c.Log.Debug)
	return errors.Join(errs...)
}

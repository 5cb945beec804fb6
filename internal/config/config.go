package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigreer/ocfs2tool/internal/format"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Path or name of the mkfs.ocfs2 binary
	MkfsPath string   `yaml:"mkfs_path,omitempty"`
	Defaults Defaults `yaml:"defaults"`
	History  History  `yaml:"history"`
}

// Defaults pre-fill the format options; flags override them.
type Defaults struct {
	// Nil means the built-in label; an explicit "" means no label.
	Label       *string `yaml:"label,omitempty"`
	ClusterSize string  `yaml:"cluster_size,omitempty"`
	BlockSize   string  `yaml:"block_size,omitempty"`
	// Nil means the built-in node count; an explicit 0 omits -n.
	Nodes *int `yaml:"nodes,omitempty"`
}

type History struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// Empty means the history database's own default location.
	Path string `yaml:"path,omitempty"`
}

// defaultConfig is used when no config file exists
var defaultConfig = Config{
	MkfsPath: format.DefaultBinary,
	Defaults: Defaults{
		ClusterSize: "auto",
		BlockSize:   "auto",
	},
}

// Candidates are the config locations tried, in order, when no path is given.
func Candidates() []string {
	return []string{
		"/etc/ocfs2tool/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/ocfs2tool/config.yaml"),
		"config.yaml",
	}
}

func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		for _, c := range Candidates() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path == "" {
		cfg = defaultConfig
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			cfg = defaultConfig
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// Apply defaults for missing values
	if cfg.MkfsPath == "" {
		cfg.MkfsPath = defaultConfig.MkfsPath
	}
	if cfg.Defaults.ClusterSize == "" {
		cfg.Defaults.ClusterSize = defaultConfig.Defaults.ClusterSize
	}
	if cfg.Defaults.BlockSize == "" {
		cfg.Defaults.BlockSize = defaultConfig.Defaults.BlockSize
	}

	return &cfg, nil
}

// HistoryEnabled reports whether format runs should be logged; on unless
// switched off.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// Options returns the configured defaults as format options.
func (c *Config) Options() (format.Options, error) {
	opts := format.DefaultOptions()

	if c.Defaults.Label != nil {
		opts.Label = *c.Defaults.Label
	}
	if c.Defaults.Nodes != nil {
		opts.Nodes = *c.Defaults.Nodes
	}

	var err error
	if opts.ClusterSize, err = format.ParseSize(c.Defaults.ClusterSize); err != nil {
		return opts, fmt.Errorf("defaults.cluster_size: %w", err)
	}
	if opts.BlockSize, err = format.ParseSize(c.Defaults.BlockSize); err != nil {
		return opts, fmt.Errorf("defaults.block_size: %w", err)
	}

	return opts, nil
}

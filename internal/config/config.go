package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/filter"
	"github.com/tkingovr/pipefilter/internal/groups"
	"github.com/tkingovr/pipefilter/internal/inventory"
)

// File is the on-disk YAML layout.
type File struct {
	Version      int                                    `yaml:"version"`
	Node         NodeSettings                           `yaml:"node"`
	Groups       []groups.Group                         `yaml:"groups,omitempty"`
	Fluids       map[string]string                      `yaml:"fluids,omitempty"`
	GroupsFile   string                                 `yaml:"groups_file,omitempty"`
	GroupsPolicy string                                 `yaml:"groups_policy,omitempty"`
	DataDir      string                                 `yaml:"data_dir,omitempty"`
	LogDir       string                                 `yaml:"log_dir,omitempty"`
	Listen       string                                 `yaml:"listen,omitempty"`
	TickInterval string                                 `yaml:"tick_interval,omitempty"`
	Container    map[api.Direction]*inventory.Container `yaml:"container,omitempty"`
}

// NodeSettings describes the node the process hosts.
type NodeSettings struct {
	ID        string   `yaml:"id,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`
	Direction string   `yaml:"direction,omitempty"`
	Capacity  int      `yaml:"capacity,omitempty"`
	Slots     []string `yaml:"slots,omitempty"`
}

// Config is the runtime configuration for pipefilter.
type Config struct {
	Path string

	NodeID    string
	Mode      api.Mode
	Direction api.Direction
	Capacity  int
	Slots     []string

	Groups       *groups.GroupFile
	GroupsFile   string
	GroupsPolicy string

	DataDir      string
	LogDir       string
	Listen       string
	TickInterval time.Duration

	Container inventory.Neighbours
}

// Load reads a YAML config file and produces a runtime Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg, err := parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	cfg, err := parse(data, "")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func parse(data []byte, path string) (*Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return fromFile(&f, path)
}

func fromFile(f *File, path string) (*Config, error) {
	if f.Version == 0 {
		f.Version = 1
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", f.Version)
	}

	cfg := &Config{
		Path:     path,
		NodeID:   f.Node.ID,
		Capacity: f.Node.Capacity,
		Slots:    f.Node.Slots,
	}
	if cfg.NodeID == "" {
		cfg.NodeID = DefaultNodeID
	}

	mode, err := api.ParseMode(f.Node.Mode)
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	cfg.Direction = api.Direction(f.Node.Direction)
	if cfg.Direction == "" {
		cfg.Direction = DefaultDirection
	}
	if !cfg.Direction.Valid() {
		return nil, fmt.Errorf("invalid direction %q", f.Node.Direction)
	}

	// Capacity
	if cfg.Capacity <= 0 {
		cfg.Capacity = filter.DefaultCapacity
	}
	if cfg.Capacity > filter.MaxCapacity {
		return nil, fmt.Errorf("capacity %d exceeds the maximum of %d", cfg.Capacity, filter.MaxCapacity)
	}
	if len(cfg.Slots) > cfg.Capacity {
		return nil, fmt.Errorf("%d slots configured but capacity is %d", len(cfg.Slots), cfg.Capacity)
	}

	// Group resolution
	if len(f.Groups) > 0 || len(f.Fluids) > 0 {
		gf := &groups.GroupFile{Version: 1, Groups: f.Groups, Fluids: f.Fluids}
		if err := groups.Validate(gf); err != nil {
			return nil, fmt.Errorf("invalid groups: %w", err)
		}
		cfg.Groups = gf
	}
	cfg.GroupsFile = relativeTo(path, f.GroupsFile)
	cfg.GroupsPolicy = relativeTo(path, f.GroupsPolicy)
	if cfg.GroupsPolicy != "" && (cfg.Groups != nil || cfg.GroupsFile != "") {
		return nil, fmt.Errorf("groups_policy cannot be combined with an inline or file group table")
	}

	// Directories
	cfg.DataDir = f.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	cfg.LogDir = f.LogDir
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir()
	}
	cfg.LogDir = expandHome(cfg.LogDir)

	// Listen address
	cfg.Listen = f.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}

	// Tick interval
	if f.TickInterval != "" {
		d, err := time.ParseDuration(f.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid tick_interval %q: %w", f.TickInterval, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("tick_interval must be positive, got %s", d)
		}
		cfg.TickInterval = d
	} else {
		cfg.TickInterval = DefaultTickInterval
	}

	cfg.Container = inventory.Neighbours{}
	for dir, c := range f.Container {
		if !dir.Valid() {
			return nil, fmt.Errorf("invalid container direction %q", dir)
		}
		if c != nil {
			cfg.Container[dir] = c
		}
	}

	return cfg, nil
}

// Resolver builds the group resolver the config selects: the Rego policy
// when groups_policy is set, otherwise the group table (possibly empty).
func (c *Config) Resolver() (groups.Resolver, error) {
	if c.GroupsPolicy != "" {
		r, err := groups.NewOPAResolver(c.GroupsPolicy)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	var (
		r   *groups.TableResolver
		err error
	)
	if c.GroupsFile != "" {
		r, err = groups.NewTableResolver(c.GroupsFile)
	} else {
		r, err = groups.NewTableResolverFromFile(c.Groups)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func relativeTo(configPath, p string) string {
	if p == "" {
		return ""
	}
	p = expandHome(p)
	if filepath.IsAbs(p) || configPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		NodeID:       DefaultNodeID,
		Mode:         api.ModeWhitelist,
		Direction:    DefaultDirection,
		Capacity:     filter.DefaultCapacity,
		DataDir:      expandHome(DefaultDataDir()),
		LogDir:       expandHome(DefaultLogDir()),
		Listen:       DefaultListen,
		TickInterval: DefaultTickInterval,
		Container:    inventory.Neighbours{},
	}
}

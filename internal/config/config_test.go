package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/filter"
)

func TestLoadBytes_Node(t *testing.T) {
	yaml := `
version: 1
node:
  id: furnace-feed
  mode: round_robin
  direction: north
  capacity: 3
  slots: ["iron_ore", "", "#plank"]
tick_interval: "2s"
`
	cfg, err := LoadBytes([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NodeID != "furnace-feed" {
		t.Errorf("expected node id furnace-feed, got %s", cfg.NodeID)
	}
	if cfg.Mode != api.ModeRoundRobin {
		t.Errorf("expected round_robin, got %s", cfg.Mode)
	}
	if cfg.Direction != api.DirectionNorth {
		t.Errorf("expected north, got %s", cfg.Direction)
	}
	if cfg.Capacity != 3 || len(cfg.Slots) != 3 {
		t.Errorf("expected 3 slots of capacity 3, got %d/%d", len(cfg.Slots), cfg.Capacity)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Errorf("expected 2s tick, got %s", cfg.TickInterval)
	}
}

func TestLoadBytes_Defaults(t *testing.T) {
	cfg, err := LoadBytes([]byte("version: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NodeID != DefaultNodeID {
		t.Errorf("expected default node id %s, got %s", DefaultNodeID, cfg.NodeID)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("expected default listen addr %s, got %s", DefaultListen, cfg.Listen)
	}
	if cfg.TickInterval != DefaultTickInterval {
		t.Errorf("expected default tick interval %s, got %s", DefaultTickInterval, cfg.TickInterval)
	}
	if cfg.Capacity != filter.DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", filter.DefaultCapacity, cfg.Capacity)
	}
	if cfg.Mode != api.ModeWhitelist {
		t.Errorf("expected whitelist, got %s", cfg.Mode)
	}
	if cfg.Direction != DefaultDirection {
		t.Errorf("expected %s, got %s", DefaultDirection, cfg.Direction)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Mode != api.ModeWhitelist {
		t.Errorf("expected whitelist default, got %s", cfg.Mode)
	}
	if cfg.Container == nil {
		t.Fatal("expected non-nil container map")
	}
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "iron_ore")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("expected no groups without a table, got %v", res.Groups)
	}
}

func TestLoadBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"version":       "version: 3\n",
		"mode":          "version: 1\nnode:\n  mode: sideways\n",
		"direction":     "version: 1\nnode:\n  direction: inward\n",
		"too many":      "version: 1\nnode:\n  capacity: 1\n  slots: [a, b]\n",
		"capacity":      "version: 1\nnode:\n  capacity: 257\n",
		"tick":          "version: 1\ntick_interval: soon\n",
		"negative tick": "version: 1\ntick_interval: -1s\n",
		"group":         "version: 1\ngroups:\n  - name: a\n",
		"container":     "version: 1\ncontainer:\n  inward:\n    items: []\n",
		"both":          "version: 1\ngroups_policy: g.rego\ngroups_file: g.yaml\n",
	}
	for name, body := range cases {
		if _, err := LoadBytes([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadBytes_MaxCapacity(t *testing.T) {
	cfg, err := LoadBytes([]byte("version: 1\nnode:\n  capacity: 256\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Capacity != 256 {
		t.Errorf("expected capacity 256, got %d", cfg.Capacity)
	}
}

func TestLoadBytes_InlineGroups(t *testing.T) {
	yaml := `
version: 1
groups:
  - name: plank
    match: 'variant endsWith "_planks"'
fluids:
  water_bucket: water
container:
  down:
    items:
      - resource: {variant: oak_planks}
        count: 4
    tanks:
      - {fluid: water, amount: 1000}
`
	cfg, err := LoadBytes([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "oak_planks")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0] != "plank" {
		t.Errorf("expected [plank], got %v", res.Groups)
	}

	down := cfg.Container[api.DirectionDown]
	if down == nil {
		t.Fatal("expected a container below the node")
	}
	if down.TotalItems() != 4 || down.FluidAmount("water") != 1000 {
		t.Errorf("unexpected container %+v", down)
	}
}

func TestLoad_RelativePolicyPath(t *testing.T) {
	dir := t.TempDir()
	policy := "package pipefilter\n\nimport rego.v1\n\ngroups contains \"ore\" if {\n\tendswith(input.variant, \"_ore\")\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "groups.rego"), []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "pipefilter.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ngroups_policy: groups.rego\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GroupsPolicy != filepath.Join(dir, "groups.rego") {
		t.Errorf("expected policy path next to config, got %s", cfg.GroupsPolicy)
	}
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "gold_ore")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0] != "ore" {
		t.Errorf("expected [ore], got %v", res.Groups)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expected %s, got %s", filepath.Join(home, "x"), got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expected /abs, got %s", got)
	}
}

func TestLoad_Testdata(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "testdata", "node.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NodeID != "furnace-feed" || cfg.Mode != api.ModeRoundRobin {
		t.Errorf("unexpected node settings %s/%s", cfg.NodeID, cfg.Mode)
	}
	if cfg.Container[api.DirectionNorth].TotalItems() != 112 {
		t.Errorf("expected 112 items north, got %d", cfg.Container[api.DirectionNorth].TotalItems())
	}

	cfg, err = Load(filepath.Join("..", "..", "testdata", "policy-node.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "lava_bucket")
	if err != nil {
		t.Fatal(err)
	}
	if res.Fluid != "lava" {
		t.Errorf("expected lava, got %q", res.Fluid)
	}
}

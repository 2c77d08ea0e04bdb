package groups

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testTable() *GroupFile {
	return &GroupFile{
		Version: 1,
		Groups: []Group{
			{Name: "plank", Match: `variant endsWith "_planks"`},
			{Name: "dye", Members: []string{"red_dye", "blue_dye"}},
			{Name: "red", Members: []string{"red_dye"}, Match: `variant startsWith "red"`},
		},
		Fluids: map[string]string{
			"water_bucket": "water",
			"redstone":     "liquid_redstone",
		},
	}
}

func TestTableResolver_Members(t *testing.T) {
	r, err := NewTableResolverFromFile(testTable())
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Resolve(context.Background(), "red_dye")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"dye", "red"}; !reflect.DeepEqual(res.Groups, want) {
		t.Errorf("expected groups %v, got %v", want, res.Groups)
	}
}

func TestTableResolver_MatchExpression(t *testing.T) {
	r, err := NewTableResolverFromFile(testTable())
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Resolve(context.Background(), "birch_planks")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0] != "plank" {
		t.Errorf("expected [plank], got %v", res.Groups)
	}

	res, err = r.Resolve(context.Background(), "cobblestone")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("expected no groups, got %v", res.Groups)
	}
}

func TestTableResolver_Fluid(t *testing.T) {
	r, err := NewTableResolverFromFile(testTable())
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Resolve(context.Background(), "redstone")
	if err != nil {
		t.Fatal(err)
	}
	if res.Fluid != "liquid_redstone" {
		t.Errorf("expected liquid_redstone, got %q", res.Fluid)
	}
	// redstone starts with "red"
	if len(res.Groups) != 1 || res.Groups[0] != "red" {
		t.Errorf("expected [red], got %v", res.Groups)
	}
}

func TestTableResolver_NilTable(t *testing.T) {
	r, err := NewTableResolverFromFile(nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 || res.Fluid != "" {
		t.Errorf("expected empty resolution, got %+v", res)
	}
}

func TestTableResolver_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write("version: 1\ngroups:\n  - name: ore\n    members: [iron_ore]\n")
	r, err := NewTableResolver(path)
	if err != nil {
		t.Fatal(err)
	}

	write("version: 1\ngroups:\n  - name: ore\n    members: [iron_ore, gold_ore]\n")
	if err := r.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(context.Background(), "gold_ore")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0] != "ore" {
		t.Errorf("expected [ore] after reload, got %v", res.Groups)
	}
}

func TestLoadBytes_Validation(t *testing.T) {
	cases := map[string]string{
		"bad version":   "version: 2\ngroups: []\n",
		"missing name":  "version: 1\ngroups:\n  - members: [a]\n",
		"duplicate":     "version: 1\ngroups:\n  - name: a\n    members: [x]\n  - name: a\n    members: [y]\n",
		"no rule":       "version: 1\ngroups:\n  - name: a\n",
		"bad match":     "version: 1\ngroups:\n  - name: a\n    match: 'variant +'\n",
		"non-bool":      "version: 1\ngroups:\n  - name: a\n    match: 'variant'\n",
		"empty fluid":   "version: 1\nfluids:\n  water_bucket: ''\n",
		"invalid yaml:": "version: [",
	}
	for name, body := range cases {
		if _, err := LoadBytes([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	gf, err := LoadBytes([]byte("groups:\n  - name: a\n    members: [x]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if gf.Version != 1 {
		t.Errorf("expected version defaulted to 1, got %d", gf.Version)
	}
}

func TestCriterion_Notation(t *testing.T) {
	r, err := NewTableResolverFromFile(testTable())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	c, err := Criterion(ctx, r, "  ")
	if err != nil || !c.IsEmpty() {
		t.Errorf("expected empty criterion, got %+v (%v)", c, err)
	}

	c, err = Criterion(ctx, r, "#plank")
	if err != nil {
		t.Fatal(err)
	}
	if c.Group != "plank" || c.Variant != "" {
		t.Errorf("expected group reference, got %+v", c)
	}

	c, err = Criterion(ctx, r, "water_bucket")
	if err != nil {
		t.Fatal(err)
	}
	if c.Variant != "water_bucket" || c.Fluid != "water" {
		t.Errorf("expected water_bucket implying water, got %+v", c)
	}

	if _, err := Criterion(ctx, r, "#"); err == nil {
		t.Error("expected error for a nameless group reference")
	}

	cs, err := Criteria(ctx, r, []string{"", "oak_planks", "#dye"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 3 || cs[1].Groups[0] != "plank" || cs[2].Group != "dye" {
		t.Errorf("unexpected criteria %+v", cs)
	}
}

func TestLoadFile_Testdata(t *testing.T) {
	r, err := NewTableResolver(filepath.Join("..", "..", "testdata", "groups.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	res, err := r.Resolve(ctx, "oak_log")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0] != "log" {
		t.Errorf("expected [log], got %v", res.Groups)
	}

	res, err = r.Resolve(ctx, "stripped_oak_log")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("expected no groups, got %v", res.Groups)
	}
}

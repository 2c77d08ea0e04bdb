package filter

import (
	"testing"

	"github.com/tkingovr/pipefilter/api"
)

func item(variant string, groups ...string) api.Criterion {
	return api.Criterion{Variant: variant, Groups: groups}
}

func group(name string) api.Criterion {
	return api.Criterion{Group: name}
}

func TestExactOrGroup(t *testing.T) {
	tests := []struct {
		name string
		a, b api.Criterion
		want bool
	}{
		{"same variant", item("iron_ingot"), item("iron_ingot"), true},
		{"different variant", item("iron_ingot"), item("gold_ingot"), false},
		{"shared group", item("oak_planks", "plank"), item("birch_planks", "plank"), true},
		{"group reference", group("plank"), item("birch_planks", "plank"), true},
		{"group reference miss", group("plank"), item("cobblestone", "stone"), false},
		{"two references", group("plank"), group("plank"), true},
		{"empty filter", api.Empty(), item("iron_ingot"), false},
		{"empty comparison", item("iron_ingot"), api.Empty(), false},
		{"empty both", api.Empty(), api.Empty(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExactOrGroup(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAnyOf_AllEmptyAcceptsEverything(t *testing.T) {
	slots := make([]api.Criterion, DefaultCapacity)
	p := AnyOf(slots)

	if !p(item("iron_ingot")) {
		t.Error("expected all-empty filter to accept iron_ingot")
	}
	if !p(api.Empty()) {
		t.Error("expected all-empty filter to accept an empty comparison")
	}
}

func TestAnyOf_MatchesAnySlot(t *testing.T) {
	slots := []api.Criterion{api.Empty(), item("iron_ingot"), group("plank")}
	p := AnyOf(slots)

	if !p(item("iron_ingot")) {
		t.Error("expected iron_ingot to match")
	}
	if !p(item("spruce_planks", "plank")) {
		t.Error("expected spruce_planks to match via group")
	}
	if p(item("dirt")) {
		t.Error("expected dirt to be rejected")
	}
	if p(api.Empty()) {
		t.Error("expected empty comparison to be rejected once a filter exists")
	}
}

func TestInvert_NegatesAnyOf(t *testing.T) {
	configs := [][]api.Criterion{
		make([]api.Criterion, 3),
		{item("iron_ingot"), api.Empty(), api.Empty()},
		{group("plank"), item("dirt"), api.Empty()},
	}
	comparisons := []api.Criterion{
		api.Empty(), item("iron_ingot"), item("dirt"), item("oak_planks", "plank"), item("stone"),
	}
	for _, slots := range configs {
		p := AnyOf(slots)
		inv := Invert(p)
		for _, cmp := range comparisons {
			if inv(cmp) == p(cmp) {
				t.Errorf("slots %v cmp %v: inverted result equals original", slots, cmp)
			}
		}
	}

	if Invert(AnyOf(make([]api.Criterion, 3)))(item("iron_ingot")) {
		t.Error("expected inverted all-empty filter to reject everything")
	}
}

func TestAnyFluid(t *testing.T) {
	slots := []api.Criterion{
		{Variant: "water_bucket", Fluid: "water"},
		{Variant: "dirt"},
		api.Empty(),
	}
	p := AnyFluid(slots)

	if !p("water") {
		t.Error("expected water to match")
	}
	if p("lava") {
		t.Error("expected lava to be rejected")
	}
	if p("") {
		t.Error("expected unnamed fluid to be rejected")
	}
	if !InvertFluid(p)("lava") {
		t.Error("expected inverted filter to accept lava")
	}
}

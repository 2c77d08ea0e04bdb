package api

import (
	"fmt"
	"strings"
)

// Mode selects how the filter slots are turned into an extraction predicate.
// The numeric value is the ordinal used in persisted records and sync frames.
type Mode uint8

const (
	ModeWhitelist  Mode = 0
	ModeBlacklist  Mode = 1
	ModeRoundRobin Mode = 2
)

var modeNames = [...]string{
	ModeWhitelist:  "whitelist",
	ModeBlacklist:  "blacklist",
	ModeRoundRobin: "round_robin",
}

// ModeFromOrdinal maps a stored ordinal back to a Mode.
// Unknown ordinals fall back to ModeWhitelist.
func ModeFromOrdinal(n int) Mode {
	switch n {
	case int(ModeBlacklist):
		return ModeBlacklist
	case int(ModeRoundRobin):
		return ModeRoundRobin
	default:
		return ModeWhitelist
	}
}

// ParseMode parses the textual name of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "whitelist", "white_list":
		return ModeWhitelist, nil
	case "blacklist", "black_list":
		return ModeBlacklist, nil
	case "round_robin", "roundrobin":
		return ModeRoundRobin, nil
	}
	return ModeWhitelist, fmt.Errorf("unknown filter mode %q", s)
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Direction is the face of the transport node the neighbouring container sits on.
type Direction string

const (
	DirectionDown  Direction = "down"
	DirectionUp    Direction = "up"
	DirectionNorth Direction = "north"
	DirectionSouth Direction = "south"
	DirectionWest  Direction = "west"
	DirectionEast  Direction = "east"
)

// Directions lists every face in ordinal order.
var Directions = []Direction{
	DirectionDown, DirectionUp, DirectionNorth, DirectionSouth, DirectionWest, DirectionEast,
}

// Valid reports whether d names a known face.
func (d Direction) Valid() bool {
	for _, known := range Directions {
		if d == known {
			return true
		}
	}
	return false
}

// Kind is the resource kind an extraction attempt targets.
type Kind string

const (
	KindItem  Kind = "item"
	KindFluid Kind = "fluid"
)

// Side tells an engine whether it is the authoritative copy or an observer mirror.
type Side int

const (
	SideAuthority Side = iota
	SideObserver
)

func (s Side) String() string {
	if s == SideObserver {
		return "observer"
	}
	return "authority"
}

// Criterion is the content of one filter slot: empty, an exact resource
// variant, or a reference to an equivalence group.
type Criterion struct {
	// Variant is the exact resource variant. Empty for group references.
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`

	// Group is set when the criterion references an equivalence group.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`

	// Groups are the equivalence groups Variant belongs to.
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`

	// Fluid is the fluid identity implied by the resource, if any.
	Fluid string `json:"fluid,omitempty" yaml:"fluid,omitempty"`
}

// Empty returns the empty criterion.
func Empty() Criterion { return Criterion{} }

// IsEmpty reports whether the criterion contributes no restriction.
func (c Criterion) IsEmpty() bool {
	return c.Variant == "" && c.Group == ""
}

// Memberships returns every group the criterion belongs to or refers to.
func (c Criterion) Memberships() []string {
	if c.Group == "" {
		return c.Groups
	}
	out := make([]string, 0, len(c.Groups)+1)
	out = append(out, c.Group)
	return append(out, c.Groups...)
}

// String renders the criterion in slot notation: "" for empty,
// "#name" for a group reference, the variant name otherwise.
func (c Criterion) String() string {
	switch {
	case c.Group != "":
		return "#" + c.Group
	default:
		return c.Variant
	}
}

// FluidStack is an amount of one fluid. A nil *FluidStack means nothing.
type FluidStack struct {
	Fluid  string `json:"fluid" yaml:"fluid"`
	Amount int    `json:"amount" yaml:"amount"`
}

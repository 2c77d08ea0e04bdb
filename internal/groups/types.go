package groups

// GroupFile is the YAML group table: which variants belong to which
// equivalence groups, and which fluid a variant implies.
type GroupFile struct {
	Version int               `yaml:"version" json:"version"`
	Groups  []Group           `yaml:"groups" json:"groups"`
	Fluids  map[string]string `yaml:"fluids,omitempty" json:"fluids,omitempty"`
}

// Group is one named equivalence group. A variant is a member when it is
// listed in Members or when the Match expression evaluates to true.
type Group struct {
	Name    string   `yaml:"name" json:"name"`
	Members []string `yaml:"members,omitempty" json:"members,omitempty"`

	// Match is an expr-lang boolean expression over `variant`,
	// e.g. `variant endsWith "_planks"`.
	Match string `yaml:"match,omitempty" json:"match,omitempty"`
}

// Resolution is what a resolver knows about one variant.
type Resolution struct {
	Groups []string `mapstructure:"groups" json:"groups,omitempty"`
	Fluid  string   `mapstructure:"fluid" json:"fluid,omitempty"`
}

package groups

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TableResolver resolves memberships from a YAML group table.
type TableResolver struct {
	mu   sync.RWMutex
	file *GroupFile
	path string

	// compiled match expressions, keyed by group name
	programs map[string]*vm.Program
}

// NewTableResolver creates a resolver from a group file path.
func NewTableResolver(path string) (*TableResolver, error) {
	r := &TableResolver{path: path}
	if err := r.Reload(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

// NewTableResolverFromFile creates a resolver from an already-loaded table.
func NewTableResolverFromFile(gf *GroupFile) (*TableResolver, error) {
	if gf == nil {
		gf = &GroupFile{Version: 1}
	}
	programs, err := compileMatches(gf)
	if err != nil {
		return nil, err
	}
	return &TableResolver{file: gf, programs: programs}, nil
}

// Resolve collects every group whose member list or match expression
// accepts the variant. Groups are returned sorted.
func (r *TableResolver) Resolve(_ context.Context, variant string) (*Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := &Resolution{Fluid: r.file.Fluids[variant]}
	for _, g := range r.file.Groups {
		ok, err := r.member(&g, variant)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Groups = append(res.Groups, g.Name)
		}
	}
	sort.Strings(res.Groups)
	return res, nil
}

// Reload re-reads the group file from disk.
func (r *TableResolver) Reload(_ context.Context) error {
	if r.path == "" {
		return nil
	}
	gf, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	programs, err := compileMatches(gf)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.file = gf
	r.programs = programs
	return nil
}

func (r *TableResolver) member(g *Group, variant string) (bool, error) {
	for _, m := range g.Members {
		if m == variant {
			return true, nil
		}
	}
	program, ok := r.programs[g.Name]
	if !ok {
		return false, nil
	}
	out, err := vm.Run(program, matchEnv(variant))
	if err != nil {
		return false, fmt.Errorf("group %q match: %w", g.Name, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

func compileMatches(gf *GroupFile) (map[string]*vm.Program, error) {
	programs := make(map[string]*vm.Program)
	for _, g := range gf.Groups {
		if g.Match == "" {
			continue
		}
		program, err := compileMatch(g.Match)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		programs[g.Name] = program
	}
	return programs, nil
}

func compileMatch(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.Env(matchEnv("")), expr.AsBool())
}

func matchEnv(variant string) map[string]any {
	return map[string]any{"variant": variant}
}

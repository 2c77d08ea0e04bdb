package groups

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
)

// OPAResolver resolves memberships with an embedded Rego policy, so groups
// can be computed from rules instead of listed.
type OPAResolver struct {
	mu   sync.RWMutex
	path string

	// Compiled query for evaluation
	query rego.PreparedEvalQuery
}

// NewOPAResolver creates a resolver from a .rego policy file.
func NewOPAResolver(path string) (*OPAResolver, error) {
	r := &OPAResolver{path: path}
	if err := r.Reload(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

// NewOPAResolverFromSource creates a resolver from raw Rego source.
func NewOPAResolverFromSource(source string) (*OPAResolver, error) {
	r := &OPAResolver{}
	if err := r.loadSource(source); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve runs the policy for one variant.
//
// The Rego policy must live in package pipefilter and may define:
//
//	groups: set or array of group names
//	fluid: string
//
// Input available to the policy:
//
//	input.variant: string
func (r *OPAResolver) Resolve(ctx context.Context, variant string) (*Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, err := r.query.Eval(ctx, rego.EvalInput(map[string]any{"variant": variant}))
	if err != nil {
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	res := &Resolution{}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return res, nil
	}

	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected OPA result type %T", rs[0].Expressions[0].Value)
	}
	if err := mapstructure.Decode(resultMap, res); err != nil {
		return nil, fmt.Errorf("decoding OPA result: %w", err)
	}
	sort.Strings(res.Groups)
	return res, nil
}

// Reload re-reads the Rego policy file from disk and recompiles.
func (r *OPAResolver) Reload(_ context.Context) error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading OPA policy file: %w", err)
	}
	return r.loadSource(string(data))
}

func (r *OPAResolver) loadSource(source string) error {
	// Parse to validate
	_, err := ast.ParseModuleWithOpts("groups.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return fmt.Errorf("parsing Rego policy: %w", err)
	}

	pr := rego.New(
		rego.Query("data.pipefilter"),
		rego.Module("groups.rego", source),
		rego.Store(inmem.New()),
	)

	query, err := pr.PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.query = query

	return nil
}

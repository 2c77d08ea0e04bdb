package node

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexes the nodes a process hosts by id.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Add registers n. Ids must be unique.
func (r *Registry) Add(n *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[n.ID()]; ok {
		return fmt.Errorf("node %s already registered", n.ID())
	}
	r.nodes[n.ID()] = n
	return nil
}

// Get returns the node with the given id.
func (r *Registry) Get(id string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

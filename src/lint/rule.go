package lint

import (
	"context"
	"fmt"
	"sync"

	"github.com/sofmeright/bandbox/src/config"
	"github.com/sofmeright/bandbox/src/tree"
)

// CheckFunc inspects a frozen tree and returns the offending paths.
// Directory paths end with the tree separator, file paths do not.
type CheckFunc func(ctx context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error)

// Rule is one named structural or naming check.
type Rule struct {
	ID          string
	Description string
	Check       CheckFunc
}

// Registry holds rules in registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends r. Registering an ID twice panics.
func (reg *Registry) Register(r Rule) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.index[r.ID]; exists {
		panic(fmt.Sprintf("lint: duplicate rule registration: %s", r.ID))
	}
	reg.index[r.ID] = len(reg.rules)
	reg.rules = append(reg.rules, r)
}

// Get returns the rule with the given ID.
func (reg *Registry) Get(id string) (Rule, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	i, ok := reg.index[id]
	if !ok {
		return Rule{}, false
	}
	return reg.rules[i], true
}

// All returns every rule in registration order.
func (reg *Registry) All() []Rule {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]Rule(nil), reg.rules...)
}

// IDs returns every rule ID in registration order.
func (reg *Registry) IDs() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ids := make([]string, len(reg.rules))
	for i, r := range reg.rules {
		ids[i] = r.ID
	}
	return ids
}

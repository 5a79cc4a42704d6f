package plan

import (
	"context"
	"sync"
)

// Catalog is the read surface over the plan tiers. Implementations must be
// safe for concurrent use; the enforcement layer consults the catalog on
// every guarded request.
type Catalog interface {
	// ByID returns the plan with the given ID.
	// Returns ErrPlanNotFound if no such plan exists.
	ByID(ctx context.Context, id string) (Plan, error)

	// ByName returns the plan with the given unique name.
	// Returns ErrPlanNotFound if no such plan exists.
	ByName(ctx context.Context, name string) (Plan, error)

	// List returns all plans in the catalog.
	List(ctx context.Context) ([]Plan, error)
}

// Source loads a plan catalog from some backing representation
// (a YAML file, a literal slice, a database table).
type Source interface {
	Load(ctx context.Context) ([]Plan, error)
}

type memoryCatalog struct {
	mu     sync.RWMutex
	byID   map[string]Plan
	byName map[string]Plan
	order  []string
}

// NewCatalog builds an in-memory catalog from a source. Every plan is
// validated and duplicate IDs or names reject the whole catalog, so a broken
// tier definition fails startup instead of a later checkout.
func NewCatalog(ctx context.Context, src Source) (Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &memoryCatalog{
		byID:   make(map[string]Plan, len(plans)),
		byName: make(map[string]Plan, len(plans)),
	}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, ErrDuplicatePlan
		}
		if _, exists := c.byName[p.Name]; exists {
			return nil, ErrDuplicatePlan
		}
		cp := p.Clone()
		c.byID[p.ID] = cp
		c.byName[p.Name] = cp
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

func (c *memoryCatalog) ByID(ctx context.Context, id string) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p.Clone(), nil
}

func (c *memoryCatalog) ByName(ctx context.Context, name string) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p.Clone(), nil
}

func (c *memoryCatalog) List(ctx context.Context) ([]Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out, nil
}

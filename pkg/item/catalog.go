package item

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/gravitas-games/crimeboss/pkg/models"
)

// ErrDuplicateItem is returned when an id is registered twice.
var ErrDuplicateItem = errors.New("item already registered")

// maxSuggestDistance bounds how far a typo may be from a known id.
const maxSuggestDistance = 3

// Catalog stores item definitions keyed by id. It is read-mostly: load it at
// startup and share it between engines.
type Catalog struct {
	mu    sync.RWMutex
	items map[models.ItemID]Definition
}

// NewCatalog builds a catalog from the given definitions.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{items: make(map[models.ItemID]Definition, len(defs))}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for static tables; it panics on invalid data.
func MustCatalog(defs ...Definition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register validates and inserts a definition.
func (c *Catalog) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[models.ItemID]Definition)
	}
	if _, exists := c.items[d.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, d.ID)
	}
	c.items[d.ID] = d
	return nil
}

// Lookup returns the definition for id, if present.
func (c *Catalog) Lookup(id models.ItemID) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[id]
	return d, ok
}

// Len returns the number of registered items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Suggest returns the registered id closest to id, for error messages.
func (c *Catalog) Suggest(id models.ItemID) (models.ItemID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	best := models.ItemID("")
	bestDist := maxSuggestDistance + 1
	for known := range c.items {
		d := levenshtein.ComputeDistance(string(id), string(known))
		if d < bestDist || (d == bestDist && known < best) {
			best, bestDist = known, d
		}
	}
	return best, best != "" && bestDist <= maxSuggestDistance
}

// UnknownItemError formats a lookup miss with a suggestion when one exists.
func (c *Catalog) UnknownItemError(id models.ItemID) error {
	if hint, ok := c.Suggest(id); ok {
		return fmt.Errorf("unknown item %q (did you mean %q?)", id, hint)
	}
	return fmt.Errorf("unknown item %q", id)
}

// Export copies catalog contents into a slice sorted by id, suitable for
// sending to clients.
func (c *Catalog) Export() []Details {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Details, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d.Details())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

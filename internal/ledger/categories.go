package ledger

import (
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// CategoryIndex resolves category names to ledger ids, ignoring case.
type CategoryIndex struct {
	byName map[string]string
}

// NewCategoryIndex indexes every active category in groups. Hidden and
// deleted categories and groups cannot be assigned and are left out.
func NewCategoryIndex(groups []models.CategoryGroup) *CategoryIndex {
	idx := &CategoryIndex{byName: make(map[string]string)}
	for _, g := range groups {
		if !g.Active() {
			continue
		}
		for _, c := range g.Categories {
			if !c.Active() {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(c.Name))
			if _, exists := idx.byName[key]; !exists {
				idx.byName[key] = c.ID
			}
		}
	}
	return idx
}

// Lookup returns the id for name, or nil when name is blank, uncategorized
// or unknown.
func (c *CategoryIndex) Lookup(name string) *string {
	if c == nil || models.IsUncategorized(name) {
		return nil
	}
	id, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	return &id
}

// Len returns the number of indexed categories.
func (c *CategoryIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}

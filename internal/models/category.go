package models

import "strings"

const (
	// DefaultCategory is assigned when no rule or classifier picks a category.
	DefaultCategory = "Uncategorized"
	// DefaultPayee is used when a row carries no payee of its own.
	DefaultPayee = "Amazon.ca"
)

// Category is a single budget category as returned by the ledger.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hidden  bool   `json:"hidden"`
	Deleted bool   `json:"deleted"`
}

// CategoryGroup is a named group of categories as returned by the ledger.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories"`
}

// Active reports whether the category can be assigned to new transactions.
func (c Category) Active() bool {
	return !c.Hidden && !c.Deleted
}

// Active reports whether the group is visible and not deleted.
func (g CategoryGroup) Active() bool {
	return !g.Hidden && !g.Deleted
}

// ActiveCategoryNames returns the names of all visible, non-deleted categories
// in ledger order.
func ActiveCategoryNames(groups []CategoryGroup) []string {
	var names []string
	for _, g := range groups {
		if !g.Active() {
			continue
		}
		for _, c := range g.Categories {
			if !c.Active() {
				continue
			}
			names = append(names, c.Name)
		}
	}
	return names
}

// IsUncategorized reports whether name is blank or the default category.
func IsUncategorized(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, DefaultCategory)
}

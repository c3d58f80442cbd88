package jsonstore

import (
	"slices"
	"time"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func (d *Document) itemIndex(id string) int {
	return slices.IndexFunc(d.Items, func(it types.Item) bool { return it.ID == id })
}

func hasItem(id string) func(*Document) bool {
	return func(doc *Document) bool { return doc.itemIndex(id) >= 0 }
}

// ListItems returns the project's items by order.
func (s *Store) ListItems(projectID string) ([]types.Item, error) {
	if !s.indexed(projectID) {
		return []types.Item{}, nil
	}
	doc, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []types.Item{}, nil
	}
	return doc.sortedItems(), nil
}

// CreateItem appends an item to the project.
func (s *Store) CreateItem(projectID string, n types.NewItem) (*types.Item, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var it types.Item
	found, err := s.mutateProject(projectID, func(doc *Document, now time.Time) bool {
		it = n.Build(types.NewID(), projectID, doc.nextItemOrder(), now)
		doc.Items = append(doc.Items, it)
		return true
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrProjectNotFound
	}
	return &it, nil
}

// UpdateItem applies u to the item, or returns nil if it does not exist.
func (s *Store) UpdateItem(id string, u types.ItemUpdate) (*types.Item, error) {
	var out *types.Item
	err := s.mutateOwner(hasItem(id), func(doc *Document, now time.Time) bool {
		i := doc.itemIndex(id)
		if i < 0 {
			return false
		}
		u.Apply(&doc.Items[i])
		doc.Items[i].UpdatedAt = now
		it := doc.Items[i]
		out = &it
		return true
	})
	return out, err
}

// DeleteItem removes the item and reports whether it existed.
func (s *Store) DeleteItem(id string) (bool, error) {
	var deleted bool
	err := s.mutateOwner(hasItem(id), func(doc *Document, _ time.Time) bool {
		i := doc.itemIndex(id)
		if i < 0 {
			return false
		}
		doc.Items = slices.Delete(doc.Items, i, i+1)
		deleted = true
		return true
	})
	return deleted, err
}

// ReorderItems numbers the listed items 0..N-1 in the given order.
func (s *Store) ReorderItems(projectID string, ids []string) error {
	_, err := s.mutateProject(projectID, func(doc *Document, _ time.Time) bool {
		for order, id := range ids {
			if i := doc.itemIndex(id); i >= 0 {
				doc.Items[i].Order = order
			}
		}
		return true
	})
	return err
}

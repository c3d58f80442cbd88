package jsonstore

import (
	"slices"
	"time"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func (d *Document) cardIndex(id string) int {
	return slices.IndexFunc(d.FileCards, func(c types.FileCard) bool { return c.ID == id })
}

func hasCard(id string) func(*Document) bool {
	return func(doc *Document) bool { return doc.cardIndex(id) >= 0 }
}

// ListFileCards returns the project's cards, lowest z-index first.
func (s *Store) ListFileCards(projectID string) ([]types.FileCard, error) {
	if !s.indexed(projectID) {
		return []types.FileCard{}, nil
	}
	doc, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []types.FileCard{}, nil
	}
	return doc.sortedCards(), nil
}

// CreateFileCard places a new card on top of the project's existing cards.
func (s *Store) CreateFileCard(projectID string, n types.NewFileCard) (*types.FileCard, error) {
	var c types.FileCard
	found, err := s.mutateProject(projectID, func(doc *Document, now time.Time) bool {
		c = n.Build(types.NewID(), projectID, doc.nextZIndex(), now)
		doc.FileCards = append(doc.FileCards, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrProjectNotFound
	}
	return &c, nil
}

// UpdateFileCard applies u to the card, or returns nil if it does not exist.
func (s *Store) UpdateFileCard(id string, u types.FileCardUpdate) (*types.FileCard, error) {
	var out *types.FileCard
	err := s.mutateOwner(hasCard(id), func(doc *Document, now time.Time) bool {
		i := doc.cardIndex(id)
		if i < 0 {
			return false
		}
		u.Apply(&doc.FileCards[i])
		doc.FileCards[i].UpdatedAt = now
		c := doc.FileCards[i]
		out = &c
		return true
	})
	return out, err
}

// DeleteFileCard removes the card and reports whether it existed.
func (s *Store) DeleteFileCard(id string) (bool, error) {
	var deleted bool
	err := s.mutateOwner(hasCard(id), func(doc *Document, _ time.Time) bool {
		i := doc.cardIndex(id)
		if i < 0 {
			return false
		}
		doc.FileCards = slices.Delete(doc.FileCards, i, i+1)
		deleted = true
		return true
	})
	return deleted, err
}

package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/mesh-intelligence/devora/pkg/types"
)

// ListProjects returns every readable project, most recently updated
// first. Documents that cannot be read are logged and left out.
func (s *Store) ListProjects() ([]types.Project, error) {
	out := []types.Project{}
	for _, info := range s.snapshotIndex().Projects {
		doc, err := s.load(info.ID)
		if err != nil {
			s.logger.Warn("skipping unreadable project", "project_id", info.ID, "error", err)
			continue
		}
		if doc == nil {
			s.logger.Warn("skipping project without document", "project_id", info.ID)
			continue
		}
		out = append(out, doc.Project())
	}
	slices.SortStableFunc(out, func(a, b types.Project) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

// GetProject returns the project with its items, or nil if it is not
// indexed or its document is missing.
func (s *Store) GetProject(id string) (*types.Project, error) {
	if !s.indexed(id) {
		return nil, nil
	}
	doc, err := s.load(id)
	if err != nil || doc == nil {
		return nil, err
	}
	p := doc.ProjectWithItems()
	return &p, nil
}

// CreateProject writes the new document before listing it in the index,
// so the index never names a project without a file.
func (s *Store) CreateProject(n types.NewProject) (*types.Project, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	s.bulkMu.RLock()
	defer s.bulkMu.RUnlock()

	now := s.timestamp()
	p := types.Project{
		ID:          types.NewID(),
		Name:        n.Name,
		Description: n.Description,
		Metadata:    n.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.save(NewDocument(p)); err != nil {
		return nil, err
	}
	err := s.updateIndex(func(idx *Index) {
		idx.Projects = append(idx.Projects, ProjectInfo{ID: p.ID, Name: p.Name})
	})
	if err != nil {
		s.evict(p.ID)
		_ = os.Remove(DocumentPath(s.dataDir, p.ID))
		return nil, err
	}
	return &p, nil
}

// UpdateProject applies u to the project header, or returns nil if the
// project does not exist.
func (s *Store) UpdateProject(id string, u types.ProjectUpdate) (*types.Project, error) {
	var (
		out     types.Project
		renamed bool
	)
	// The index entry is renamed under the same lock as the document, so
	// concurrent renames reach metadata.json in the order they were applied.
	defer s.lockProject(id)()
	found, err := s.mutateLocked(id, func(doc *Document, now time.Time) bool {
		p := doc.Project()
		u.Apply(&p)
		renamed = p.Name != doc.Name
		doc.Name, doc.Description, doc.Metadata = p.Name, p.Description, p.Metadata
		out = p
		out.UpdatedAt = now
		return true
	})
	if err != nil || !found {
		return nil, err
	}
	if renamed {
		err := s.updateIndex(func(idx *Index) {
			for i := range idx.Projects {
				if idx.Projects[i].ID == id {
					idx.Projects[i].Name = out.Name
				}
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// DeleteProject unlists the project before removing its document, so a
// crash in between leaves an orphan file rather than a dangling entry.
func (s *Store) DeleteProject(id string) (bool, error) {
	defer s.lockProject(id)()

	if !s.indexed(id) {
		return false, nil
	}
	err := s.updateIndex(func(idx *Index) {
		idx.Projects = slices.DeleteFunc(idx.Projects, func(p ProjectInfo) bool { return p.ID == id })
	})
	if err != nil {
		return false, err
	}
	s.evict(id)
	if err := os.Remove(DocumentPath(s.dataDir, id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return true, fmt.Errorf("removing project %s: %w", id, err)
	}
	return true, nil
}

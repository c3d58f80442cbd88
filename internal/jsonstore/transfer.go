package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/devora/pkg/types"
)

// Export returns the selected projects with their items and file cards.
// Projects whose document cannot be read fail the export.
func (s *Store) Export(projectIDs []string) (*types.ExportData, error) {
	out := &types.ExportData{
		Version:    types.ExportVersion,
		ExportedAt: s.timestamp(),
		Projects:   []types.ProjectRow{},
		Items:      []types.Item{},
		FileCards:  []types.FileCardRow{},
	}

	var wanted map[string]bool
	if projectIDs != nil {
		wanted = make(map[string]bool, len(projectIDs))
		for _, id := range projectIDs {
			wanted[id] = true
		}
	}
	for _, info := range s.snapshotIndex().Projects {
		if wanted != nil && !wanted[info.ID] {
			continue
		}
		doc, err := s.load(info.ID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		out.Projects = append(out.Projects, doc.Project().Row())
		out.Items = append(out.Items, doc.sortedItems()...)
		for _, c := range doc.sortedCards() {
			out.FileCards = append(out.FileCards, c.Row())
		}
	}
	return out, nil
}

// validID reports whether id can name a document file.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// Import merges the envelope into the store. Projects whose id already
// exists are skipped, as are items and cards whose id exists or whose
// project is absent. Replace mode first deletes every project. Each
// affected document is written once, then the index.
func (s *Store) Import(data types.ImportData, mode types.ImportMode) (*types.ImportResult, error) {
	s.bulkMu.Lock()
	defer s.bulkMu.Unlock()

	res := &types.ImportResult{}
	idx := s.snapshotIndex()

	if mode == types.ImportReplace {
		err := s.updateIndex(func(next *Index) { next.Projects = nil })
		if err != nil {
			return nil, err
		}
		for _, p := range idx.Projects {
			if err := os.Remove(DocumentPath(s.dataDir, p.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("removing project %s: %w", p.ID, err)
			}
		}
		s.ClearCache()
		idx.Projects = nil
	}

	// Existing documents, and the ids of every child they hold.
	docs := make(map[string]*Document, len(idx.Projects))
	itemIDs := map[string]bool{}
	cardIDs := map[string]bool{}
	for _, p := range idx.Projects {
		doc, err := s.load(p.ID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		docs[p.ID] = doc
		for _, it := range doc.Items {
			itemIDs[it.ID] = true
		}
		for _, c := range doc.FileCards {
			cardIDs[c.ID] = true
		}
	}

	dirty := map[string]*Document{}
	var added []ProjectInfo
	edit := func(id string) *Document {
		if d, ok := dirty[id]; ok {
			return d
		}
		d := docs[id].clone()
		dirty[id] = d
		return d
	}

	for _, row := range data.Projects {
		if _, exists := docs[row.ID]; exists || idx.has(row.ID) || !validID(row.ID) {
			res.Skipped++
			continue
		}
		doc := NewDocument(row.Project())
		docs[row.ID] = doc
		dirty[row.ID] = doc
		added = append(added, ProjectInfo{ID: row.ID, Name: row.Name})
		res.ProjectsImported++
	}

	for _, it := range data.Items {
		if _, ok := docs[it.ProjectID]; !ok || itemIDs[it.ID] {
			res.Skipped++
			continue
		}
		d := edit(it.ProjectID)
		d.Items = append(d.Items, it)
		itemIDs[it.ID] = true
		res.ItemsImported++
	}

	for _, row := range data.FileCards {
		if _, ok := docs[row.ProjectID]; !ok || cardIDs[row.ID] {
			res.Skipped++
			continue
		}
		d := edit(row.ProjectID)
		d.FileCards = append(d.FileCards, row.Card())
		cardIDs[row.ID] = true
		res.FileCardsImported++
	}

	for _, d := range dirty {
		if err := s.save(d); err != nil {
			return nil, err
		}
	}
	if len(added) > 0 {
		err := s.updateIndex(func(next *Index) { next.Projects = append(next.Projects, added...) })
		if err != nil {
			return nil, err
		}
	}
	s.logger.Info("import finished",
		"mode", string(mode),
		"projects", res.ProjectsImported,
		"items", res.ItemsImported,
		"file_cards", res.FileCardsImported,
		"skipped", res.Skipped,
	)
	return res, nil
}

package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/devora/pkg/types"
)

// Export returns the selected projects with their items and file cards.
// Todos and settings are not part of the envelope.
func (b *Backend) Export(projectIDs []string) (*types.ExportData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := &types.ExportData{
		Version:    types.ExportVersion,
		ExportedAt: b.timestamp(),
		Projects:   []types.ProjectRow{},
		Items:      []types.Item{},
		FileCards:  []types.FileCardRow{},
	}
	if projectIDs != nil && len(projectIDs) == 0 {
		return out, nil
	}

	where := ""
	var args []any
	if projectIDs != nil {
		where = " WHERE id IN (?" + strings.Repeat(", ?", len(projectIDs)-1) + ")"
		for _, id := range projectIDs {
			args = append(args, id)
		}
	}
	rows, err := queryProjectRows(b.db, where, args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out.Projects = append(out.Projects, row)
		items, err := queryItems(b.db, row.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, items...)
		cards, err := queryFileCards(b.db, row.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range cards {
			out.FileCards = append(out.FileCards, c.Row())
		}
	}
	return out, nil
}

// Import writes the envelope's records in one transaction. Projects whose id
// already exists are skipped, as are items and cards whose id exists or
// whose project is absent. Replace mode first deletes every project.
func (b *Backend) Import(data types.ImportData, mode types.ImportMode) (*types.ImportResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if mode == types.ImportReplace {
		for _, table := range []string{"file_cards", "items", "todos", "projects"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return nil, fmt.Errorf("clearing %s: %w", table, err)
			}
		}
	}

	res := &types.ImportResult{}
	for _, p := range data.Projects {
		exists, err := projectExists(tx, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if err := insertProjectRow(tx, p); err != nil {
			return nil, err
		}
		res.ProjectsImported++
	}

	for _, it := range data.Items {
		ok, err := importable(tx, "items", it.ID, it.ProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		if err := insertItem(tx, it); err != nil {
			return nil, err
		}
		res.ItemsImported++
	}

	for _, row := range data.FileCards {
		ok, err := importable(tx, "file_cards", row.ID, row.ProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		if err := insertFileCard(tx, row.Card()); err != nil {
			return nil, err
		}
		res.FileCardsImported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}

// importable reports whether a child row can be inserted: its id is new
// and its project exists.
func importable(q execer, table, id, projectID string) (bool, error) {
	exists, err := rowExists(q, table, id)
	if err != nil || exists {
		return false, err
	}
	return projectExists(q, projectID)
}

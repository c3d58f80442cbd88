package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/devora/pkg/types"
)

const fileCardColumns = "id, project_id, filename, file_path, position_x, position_y, is_expanded, z_index, created_at, updated_at, is_minimized"

func scanFileCard(s interface{ Scan(...any) error }) (types.FileCard, error) {
	var (
		c                    types.FileCard
		expanded, minimized  int
		createdAt, updatedAt string
	)
	err := s.Scan(&c.ID, &c.ProjectID, &c.Filename, &c.FilePath, &c.PositionX, &c.PositionY,
		&expanded, &c.ZIndex, &createdAt, &updatedAt, &minimized)
	if err != nil {
		return c, err
	}
	c.IsExpanded = expanded != 0
	c.IsMinimized = minimized != 0
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

func queryFileCards(q execer, projectID string) ([]types.FileCard, error) {
	rows, err := q.Query("SELECT "+fileCardColumns+" FROM file_cards WHERE project_id = ? ORDER BY z_index", projectID)
	if err != nil {
		return nil, fmt.Errorf("querying file cards of %s: %w", projectID, err)
	}
	defer rows.Close()

	cards := []types.FileCard{}
	for rows.Next() {
		c, err := scanFileCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file cards: %w", err)
	}
	return cards, nil
}

func insertFileCard(q execer, c types.FileCard) error {
	_, err := q.Exec(
		"INSERT INTO file_cards ("+fileCardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.ProjectID, c.Filename, c.FilePath, c.PositionX, c.PositionY, boolToInt(c.IsExpanded),
		c.ZIndex, formatTime(c.CreatedAt), formatTime(c.UpdatedAt), boolToInt(c.IsMinimized),
	)
	if err != nil {
		return fmt.Errorf("inserting file card %s: %w", c.ID, err)
	}
	return nil
}

// ListFileCards returns the project's cards, lowest z-index first.
func (b *Backend) ListFileCards(projectID string) ([]types.FileCard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return queryFileCards(b.db, projectID)
}

// CreateFileCard places a new card on top of the project's existing cards.
func (b *Backend) CreateFileCard(projectID string, n types.NewFileCard) (*types.FileCard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ok, err := projectExists(tx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrProjectNotFound
	}

	var z int
	if err := tx.QueryRow("SELECT COALESCE(MAX(z_index), -1) + 1 FROM file_cards WHERE project_id = ?", projectID).Scan(&z); err != nil {
		return nil, fmt.Errorf("computing z-index: %w", err)
	}

	now := b.timestamp()
	c := n.Build(types.NewID(), projectID, z, now)
	if err := insertFileCard(tx, c); err != nil {
		return nil, err
	}
	if err := touchProject(tx, projectID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing file card: %w", err)
	}
	return &c, nil
}

// UpdateFileCard applies u to the card, or returns nil if it does not exist.
func (b *Backend) UpdateFileCard(id string, u types.FileCardUpdate) (*types.FileCard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := scanFileCard(tx.QueryRow("SELECT "+fileCardColumns+" FROM file_cards WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting file card %s: %w", id, err)
	}
	u.Apply(&c)
	c.UpdatedAt = b.timestamp()

	_, err = tx.Exec(
		"UPDATE file_cards SET position_x = ?, position_y = ?, is_expanded = ?, is_minimized = ?, z_index = ?, updated_at = ? WHERE id = ?",
		c.PositionX, c.PositionY, boolToInt(c.IsExpanded), boolToInt(c.IsMinimized), c.ZIndex, formatTime(c.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating file card %s: %w", id, err)
	}
	if err := touchProject(tx, c.ProjectID, c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing file card: %w", err)
	}
	return &c, nil
}

// DeleteFileCard removes the card and reports whether it existed.
func (b *Backend) DeleteFileCard(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return deleteChild(b.db, "file_cards", id, b.timestamp())
}

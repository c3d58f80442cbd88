package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// deleteChild removes a row of a project-owned table and touches the
// owning project.
func deleteChild(db *sql.DB, table, id string, now time.Time) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID string
	err = tx.QueryRow("SELECT project_id FROM "+table+" WHERE id = ?", id).Scan(&projectID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s %s: %w", table, id, err)
	}
	if _, err := tx.Exec("DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	if err := touchProject(tx, projectID, now); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}

// reorderChildren assigns "order" 0..N-1 to the listed rows of a project.
// Ids owned by another project are left alone.
func reorderChildren(db *sql.DB, table, projectID string, ids []string, now time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE `+table+` SET "order" = ? WHERE id = ? AND project_id = ?`, i, id, projectID); err != nil {
			return fmt.Errorf("reordering %s %s: %w", table, id, err)
		}
	}
	if err := touchProject(tx, projectID, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}
	return nil
}

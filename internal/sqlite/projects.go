package sqlite

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/devora/pkg/types"
)

const projectColumns = "id, name, description, metadata, created_at, updated_at"

func scanProjectRow(s interface{ Scan(...any) error }) (types.ProjectRow, error) {
	var (
		row                  types.ProjectRow
		desc, meta           sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&row.ID, &row.Name, &desc, &meta, &createdAt, &updatedAt); err != nil {
		return row, err
	}
	row.Description = desc.String
	row.Metadata = meta.String
	row.CreatedAt = parseTime(createdAt)
	row.UpdatedAt = parseTime(updatedAt)
	return row, nil
}

// queryProjectRows returns project rows, most recently updated first.
func queryProjectRows(q execer, where string, args ...any) ([]types.ProjectRow, error) {
	rows, err := q.Query("SELECT "+projectColumns+" FROM projects"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []types.ProjectRow
	for rows.Next() {
		row, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	// Stored timestamps vary in fractional width, so sort on parsed values.
	slices.SortStableFunc(out, func(a, b types.ProjectRow) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func getProjectRow(q execer, id string) (*types.ProjectRow, error) {
	row, err := scanProjectRow(q.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return &row, nil
}

// ListProjects returns every project without items, most recently updated
// first.
func (b *Backend) ListProjects() ([]types.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := queryProjectRows(b.db, "")
	if err != nil {
		return nil, err
	}
	projects := make([]types.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.Project())
	}
	return projects, nil
}

// GetProject returns the project with its items, or nil if it does not exist.
func (b *Backend) GetProject(id string) (*types.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	row, err := getProjectRow(b.db, id)
	if err != nil || row == nil {
		return nil, err
	}
	p := row.Project()
	items, err := queryItems(b.db, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

// CreateProject inserts a new project.
func (b *Backend) CreateProject(n types.NewProject) (*types.Project, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.timestamp()
	p := types.Project{
		ID:          types.NewID(),
		Name:        n.Name,
		Description: n.Description,
		Metadata:    n.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := insertProjectRow(b.db, p.Row()); err != nil {
		return nil, err
	}
	return &p, nil
}

func insertProjectRow(q execer, r types.ProjectRow) error {
	meta := r.Metadata
	if strings.TrimSpace(meta) == "" {
		meta = "{}"
	}
	_, err := q.Exec(
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Name, r.Description, meta, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project %s: %w", r.ID, err)
	}
	return nil
}

// UpdateProject applies u to the project and returns the result, or nil if
// the project does not exist.
func (b *Backend) UpdateProject(id string, u types.ProjectUpdate) (*types.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	row, err := getProjectRow(b.db, id)
	if err != nil || row == nil {
		return nil, err
	}
	p := row.Project()
	u.Apply(&p)
	p.UpdatedAt = b.timestamp()

	_, err = b.db.Exec(
		"UPDATE projects SET name = ?, description = ?, metadata = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Description, p.Metadata.Encode(), formatTime(p.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating project %s: %w", id, err)
	}
	return &p, nil
}

// DeleteProject removes the project; its items, cards and todos go with it.
func (b *Backend) DeleteProject(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting project %s: %w", id, err)
	}
	return n > 0, nil
}

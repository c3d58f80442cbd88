package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/devora/pkg/types"
)

const todoColumns = `id, project_id, content, completed, "order", indent_level, created_at, updated_at, completed_at`

func scanTodo(s interface{ Scan(...any) error }) (types.TodoItem, error) {
	var (
		td                   types.TodoItem
		completed            int
		createdAt, updatedAt string
		completedAt          sql.NullString
	)
	err := s.Scan(&td.ID, &td.ProjectID, &td.Content, &completed, &td.Order, &td.IndentLevel,
		&createdAt, &updatedAt, &completedAt)
	if err != nil {
		return td, err
	}
	td.Completed = completed != 0
	td.CreatedAt = parseTime(createdAt)
	td.UpdatedAt = parseTime(updatedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		td.CompletedAt = &t
	}
	return td, nil
}

func queryTodos(q execer, projectID string) ([]types.TodoItem, error) {
	rows, err := q.Query(`SELECT `+todoColumns+` FROM todos WHERE project_id = ? ORDER BY "order"`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying todos of %s: %w", projectID, err)
	}
	defer rows.Close()

	todos := []types.TodoItem{}
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}

func completedAtValue(td types.TodoItem) sql.NullString {
	if td.CompletedAt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*td.CompletedAt), Valid: true}
}

// ListTodos returns the project's todos by order.
func (b *Backend) ListTodos(projectID string) ([]types.TodoItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return queryTodos(b.db, projectID)
}

// CreateTodo appends an open todo to the project.
func (b *Backend) CreateTodo(projectID, content string, indent int) (*types.TodoItem, error) {
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

	var order int
	if err := tx.QueryRow(`SELECT COALESCE(MAX("order"), -1) + 1 FROM todos WHERE project_id = ?`, projectID).Scan(&order); err != nil {
		return nil, fmt.Errorf("computing todo order: %w", err)
	}

	now := b.timestamp()
	td := types.NewTodo(types.NewID(), projectID, content, indent, order, now)
	_, err = tx.Exec(
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		td.ID, td.ProjectID, td.Content, boolToInt(td.Completed), td.Order, td.IndentLevel,
		formatTime(td.CreatedAt), formatTime(td.UpdatedAt), completedAtValue(td),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting todo: %w", err)
	}
	if err := touchProject(tx, projectID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo: %w", err)
	}
	return &td, nil
}

// UpdateTodo applies u to the todo, or returns nil if it does not exist.
func (b *Backend) UpdateTodo(id string, u types.TodoUpdate) (*types.TodoItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	td, err := scanTodo(tx.QueryRow("SELECT "+todoColumns+" FROM todos WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	now := b.timestamp()
	u.Apply(&td, now)

	_, err = tx.Exec(
		`UPDATE todos SET content = ?, completed = ?, "order" = ?, indent_level = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		td.Content, boolToInt(td.Completed), td.Order, td.IndentLevel, formatTime(td.UpdatedAt), completedAtValue(td), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, err)
	}
	if err := touchProject(tx, td.ProjectID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo: %w", err)
	}
	return &td, nil
}

// DeleteTodo removes the todo and reports whether it existed.
func (b *Backend) DeleteTodo(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return deleteChild(b.db, "todos", id, b.timestamp())
}

// ReorderTodos numbers the listed todos 0..N-1 in the given order.
func (b *Backend) ReorderTodos(projectID string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return reorderChildren(b.db, "todos", projectID, ids, b.timestamp())
}

// TodoProgress counts the project's completed todos.
func (b *Backend) TodoProgress(projectID string) (types.TodoProgress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	todos, err := queryTodos(b.db, projectID)
	if err != nil {
		return types.TodoProgress{}, err
	}
	return types.ProgressOf(todos), nil
}

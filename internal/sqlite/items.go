package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/devora/pkg/types"
)

const itemColumns = `id, project_id, type, title, content, ide_type, "order", created_at, updated_at, ` +
	`remote_ide_type, command_mode, command_cwd, command_host, coding_agent_type, coding_agent_args, coding_agent_env`

func scanItem(s interface{ Scan(...any) error }) (types.Item, error) {
	var (
		it                                           types.Item
		typ, createdAt, updatedAt                    string
		content, ideType, remoteIDE, mode, cwd, host sql.NullString
		agentType, agentArgs, agentEnv               sql.NullString
	)
	err := s.Scan(&it.ID, &it.ProjectID, &typ, &it.Title, &content, &ideType, &it.Order,
		&createdAt, &updatedAt, &remoteIDE, &mode, &cwd, &host, &agentType, &agentArgs, &agentEnv)
	if err != nil {
		return it, err
	}
	it.Type, _ = types.ParseItemType(typ)
	it.Content = content.String
	it.IDEType = ideType.String
	it.RemoteIDEType = remoteIDE.String
	it.CommandMode, _ = types.ParseCommandMode(mode.String)
	it.CommandCwd = cwd.String
	it.CommandHost = host.String
	it.CodingAgentType, _ = types.ParseCodingAgentType(agentType.String)
	it.CodingAgentArgs = agentArgs.String
	it.CodingAgentEnv = agentEnv.String
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	return it, nil
}

func queryItems(q execer, projectID string) ([]types.Item, error) {
	rows, err := q.Query(`SELECT `+itemColumns+` FROM items WHERE project_id = ? ORDER BY "order"`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying items of %s: %w", projectID, err)
	}
	defer rows.Close()

	items := []types.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func getItem(q execer, id string) (*types.Item, error) {
	it, err := scanItem(q.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return &it, nil
}

func insertItem(q execer, it types.Item) error {
	_, err := q.Exec(
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.ProjectID, it.Type.String(), it.Title, it.Content, nullString(it.IDEType), it.Order,
		formatTime(it.CreatedAt), formatTime(it.UpdatedAt), nullString(it.RemoteIDEType),
		nullString(it.CommandMode.String()), nullString(it.CommandCwd), nullString(it.CommandHost),
		nullString(it.CodingAgentType.String()), nullString(it.CodingAgentArgs), nullString(it.CodingAgentEnv),
	)
	if err != nil {
		return fmt.Errorf("inserting item %s: %w", it.ID, err)
	}
	return nil
}

// ListItems returns the project's items by order; empty if the project does
// not exist.
func (b *Backend) ListItems(projectID string) ([]types.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return queryItems(b.db, projectID)
}

// CreateItem appends an item to the project.
func (b *Backend) CreateItem(projectID string, n types.NewItem) (*types.Item, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
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
	if err := tx.QueryRow(`SELECT COALESCE(MAX("order"), -1) + 1 FROM items WHERE project_id = ?`, projectID).Scan(&order); err != nil {
		return nil, fmt.Errorf("computing item order: %w", err)
	}

	now := b.timestamp()
	it := n.Build(types.NewID(), projectID, order, now)
	if err := insertItem(tx, it); err != nil {
		return nil, err
	}
	if err := touchProject(tx, projectID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return &it, nil
}

// UpdateItem applies u to the item, or returns nil if it does not exist.
func (b *Backend) UpdateItem(id string, u types.ItemUpdate) (*types.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	it, err := getItem(tx, id)
	if err != nil || it == nil {
		return nil, err
	}
	u.Apply(it)
	it.UpdatedAt = b.timestamp()

	_, err = tx.Exec(
		`UPDATE items SET title = ?, content = ?, ide_type = ?, remote_ide_type = ?, coding_agent_type = ?, `+
			`coding_agent_args = ?, coding_agent_env = ?, command_mode = ?, command_cwd = ?, command_host = ?, `+
			`"order" = ?, updated_at = ? WHERE id = ?`,
		it.Title, it.Content, nullString(it.IDEType), nullString(it.RemoteIDEType),
		nullString(it.CodingAgentType.String()), nullString(it.CodingAgentArgs), nullString(it.CodingAgentEnv),
		nullString(it.CommandMode.String()), nullString(it.CommandCwd), nullString(it.CommandHost),
		it.Order, formatTime(it.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item %s: %w", id, err)
	}
	if err := touchProject(tx, it.ProjectID, it.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return it, nil
}

// DeleteItem removes the item and reports whether it existed.
func (b *Backend) DeleteItem(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return deleteChild(b.db, "items", id, b.timestamp())
}

// ReorderItems numbers the listed items 0..N-1 in the given order.
func (b *Backend) ReorderItems(projectID string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return reorderChildren(b.db, "items", projectID, ids, b.timestamp())
}

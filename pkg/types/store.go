package types

import "errors"

// Store is the persistence contract implemented by every backend.
//
// Lookups of an unknown id are not errors: Get and Update return a nil
// pointer, Delete returns false and List returns an empty slice. Errors are
// reserved for I/O failures and violated preconditions.
//
// Every mutation of a child record (item, file card, todo) also advances the
// parent project's UpdatedAt.
type Store interface {
	// ListProjects returns all projects, most recently updated first,
	// without their items.
	ListProjects() ([]Project, error)
	// GetProject returns the project with its items sorted by Order.
	GetProject(id string) (*Project, error)
	CreateProject(p NewProject) (*Project, error)
	UpdateProject(id string, u ProjectUpdate) (*Project, error)
	// DeleteProject removes the project and every record it owns.
	DeleteProject(id string) (bool, error)

	ListItems(projectID string) ([]Item, error)
	// CreateItem appends an item after the project's last one. It returns
	// ErrProjectNotFound when the project does not exist.
	CreateItem(projectID string, n NewItem) (*Item, error)
	UpdateItem(id string, u ItemUpdate) (*Item, error)
	DeleteItem(id string) (bool, error)
	// ReorderItems assigns Order 0..N-1 following ids. Ids that do not
	// belong to the project are ignored.
	ReorderItems(projectID string, ids []string) error

	// ListFileCards returns the project's cards by ascending ZIndex.
	ListFileCards(projectID string) ([]FileCard, error)
	CreateFileCard(projectID string, n NewFileCard) (*FileCard, error)
	UpdateFileCard(id string, u FileCardUpdate) (*FileCard, error)
	DeleteFileCard(id string) (bool, error)

	// ListTodos returns the project's todos by ascending Order.
	ListTodos(projectID string) ([]TodoItem, error)
	CreateTodo(projectID, content string, indent int) (*TodoItem, error)
	UpdateTodo(id string, u TodoUpdate) (*TodoItem, error)
	DeleteTodo(id string) (bool, error)
	ReorderTodos(projectID string, ids []string) error
	TodoProgress(projectID string) (TodoProgress, error)

	Settings() (map[string]string, error)
	Setting(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error

	// Export returns the selected projects with their items and cards. A
	// nil projectIDs selects every project; an empty non-nil slice selects
	// none.
	Export(projectIDs []string) (*ExportData, error)
	Import(data ImportData, mode ImportMode) (*ImportResult, error)

	Close() error
}

// Store errors.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidItemType = errors.New("invalid item type")
)

package jsonstore

import (
	"slices"
	"time"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func (d *Document) todoIndex(id string) int {
	return slices.IndexFunc(d.TodoItems, func(td types.TodoItem) bool { return td.ID == id })
}

func hasTodo(id string) func(*Document) bool {
	return func(doc *Document) bool { return doc.todoIndex(id) >= 0 }
}

// ListTodos returns the project's todos by order.
func (s *Store) ListTodos(projectID string) ([]types.TodoItem, error) {
	if !s.indexed(projectID) {
		return []types.TodoItem{}, nil
	}
	doc, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []types.TodoItem{}, nil
	}
	return doc.sortedTodos(), nil
}

// ProjectTodos returns the project's checklist as markdown text, or "" if
// the project does not exist.
func (s *Store) ProjectTodos(projectID string) (string, error) {
	todos, err := s.ListTodos(projectID)
	if err != nil {
		return "", err
	}
	return types.RenderTodoOutline(todos), nil
}

// CreateTodo appends an open todo to the project.
func (s *Store) CreateTodo(projectID, content string, indent int) (*types.TodoItem, error) {
	var td types.TodoItem
	found, err := s.mutateProject(projectID, func(doc *Document, now time.Time) bool {
		td = types.NewTodo(types.NewID(), projectID, content, indent, doc.nextTodoOrder(), now)
		doc.TodoItems = append(doc.TodoItems, td)
		return true
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrProjectNotFound
	}
	return &td, nil
}

// UpdateTodo applies u to the todo, or returns nil if it does not exist.
func (s *Store) UpdateTodo(id string, u types.TodoUpdate) (*types.TodoItem, error) {
	var out *types.TodoItem
	err := s.mutateOwner(hasTodo(id), func(doc *Document, now time.Time) bool {
		i := doc.todoIndex(id)
		if i < 0 {
			return false
		}
		u.Apply(&doc.TodoItems[i], now)
		td := doc.TodoItems[i]
		out = &td
		return true
	})
	return out, err
}

// DeleteTodo removes the todo and reports whether it existed.
func (s *Store) DeleteTodo(id string) (bool, error) {
	var deleted bool
	err := s.mutateOwner(hasTodo(id), func(doc *Document, _ time.Time) bool {
		i := doc.todoIndex(id)
		if i < 0 {
			return false
		}
		doc.TodoItems = slices.Delete(doc.TodoItems, i, i+1)
		deleted = true
		return true
	})
	return deleted, err
}

// ReorderTodos numbers the listed todos 0..N-1 in the given order.
func (s *Store) ReorderTodos(projectID string, ids []string) error {
	_, err := s.mutateProject(projectID, func(doc *Document, _ time.Time) bool {
		for order, id := range ids {
			if i := doc.todoIndex(id); i >= 0 {
				doc.TodoItems[i].Order = order
			}
		}
		return true
	})
	return err
}

// TodoProgress counts the project's completed todos.
func (s *Store) TodoProgress(projectID string) (types.TodoProgress, error) {
	todos, err := s.ListTodos(projectID)
	if err != nil {
		return types.TodoProgress{}, err
	}
	return types.ProgressOf(todos), nil
}

package types

import (
	"slices"
	"strings"
	"time"
)

// TodoItem is one line of a project's checklist.
type TodoItem struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Content     string     `json:"content"`
	Completed   bool       `json:"completed"`
	Order       int        `json:"order"`
	IndentLevel int        `json:"indent_level"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTodo returns an open todo. Negative indents are clamped to zero.
func NewTodo(id, projectID, content string, indent, order int, now time.Time) TodoItem {
	return TodoItem{
		ID:          id,
		ProjectID:   projectID,
		Content:     content,
		Order:       order,
		IndentLevel: max(indent, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TodoUpdate lists the todo fields to change; nil fields are kept.
type TodoUpdate struct {
	Content     *string
	Completed   *bool
	IndentLevel *int
	Order       *int
}

// Apply writes the provided fields onto td and maintains CompletedAt: it is
// stamped with now when the todo becomes completed, kept while it stays
// completed and cleared when it is reopened. UpdatedAt is set to now.
func (u TodoUpdate) Apply(td *TodoItem, now time.Time) {
	setIf(&td.Content, u.Content)
	setIf(&td.Order, u.Order)
	if u.IndentLevel != nil {
		td.IndentLevel = max(*u.IndentLevel, 0)
	}
	if u.Completed != nil {
		switch {
		case *u.Completed && !td.Completed:
			stamp := now
			td.CompletedAt = &stamp
		case !*u.Completed:
			td.CompletedAt = nil
		}
		td.Completed = *u.Completed
	}
	td.UpdatedAt = now
}

// TodoProgress summarises how much of a checklist is done.
type TodoProgress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// ProgressOf counts the completed todos in todos.
func ProgressOf(todos []TodoItem) TodoProgress {
	p := TodoProgress{Total: len(todos)}
	for _, td := range todos {
		if td.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}

// RenderTodoOutline renders todos as a markdown checklist, one line per todo
// in Order, indented two spaces per level.
func RenderTodoOutline(todos []TodoItem) string {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, func(a, b TodoItem) int { return a.Order - b.Order })

	lines := make([]string, 0, len(sorted))
	for _, td := range sorted {
		box := "[ ]"
		if td.Completed {
			box = "[x]"
		}
		lines = append(lines, strings.Repeat("  ", max(td.IndentLevel, 0))+"- "+box+" "+td.Content)
	}
	return strings.Join(lines, "\n")
}

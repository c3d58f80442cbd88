package jsonstore

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/devora/pkg/types"
)

// IndexVersion is the format version written into metadata.json.
const IndexVersion = 1

// ProjectInfo is an index entry.
type ProjectInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Index is the content of metadata.json: the list of projects and the
// installation-wide settings. ProjectIDs mirrors Projects for readers that
// only understand the id list.
type Index struct {
	Version        int               `json:"version"`
	ProjectIDs     []string          `json:"project_ids"`
	Projects       []ProjectInfo     `json:"projects"`
	GlobalSettings map[string]string `json:"global_settings"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Version:        IndexVersion,
		ProjectIDs:     []string{},
		Projects:       []ProjectInfo{},
		GlobalSettings: map[string]string{},
	}
}

// adoptLegacyIDs adds the ids known only from the legacy id list to
// Projects. It runs once, on an index read from disk; afterwards Projects
// is the only source of truth.
func (idx *Index) adoptLegacyIDs() {
	for _, id := range idx.ProjectIDs {
		if id != "" && !idx.has(id) {
			idx.Projects = append(idx.Projects, ProjectInfo{ID: id})
		}
	}
}

// normalize fills in defaults, drops blank and duplicate entries, and
// rebuilds ProjectIDs from Projects.
func (idx *Index) normalize() {
	if idx.Version == 0 {
		idx.Version = IndexVersion
	}
	if idx.GlobalSettings == nil {
		idx.GlobalSettings = map[string]string{}
	}
	seen := make(map[string]bool, len(idx.Projects))
	projects := make([]ProjectInfo, 0, len(idx.Projects))
	for _, p := range idx.Projects {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		projects = append(projects, p)
	}
	idx.Projects = projects
	idx.ProjectIDs = idx.ids()
}

func (idx *Index) ids() []string {
	ids := make([]string, len(idx.Projects))
	for i, p := range idx.Projects {
		ids[i] = p.ID
	}
	return ids
}

// Empty reports whether the index lists no projects.
func (idx *Index) Empty() bool {
	return len(idx.Projects) == 0
}

func (idx *Index) has(id string) bool {
	return slices.ContainsFunc(idx.Projects, func(p ProjectInfo) bool { return p.ID == id })
}

func (idx *Index) clone() *Index {
	c := *idx
	c.ProjectIDs = slices.Clone(idx.ProjectIDs)
	c.Projects = slices.Clone(idx.Projects)
	c.GlobalSettings = make(map[string]string, len(idx.GlobalSettings))
	for k, v := range idx.GlobalSettings {
		c.GlobalSettings[k] = v
	}
	return &c
}

// Document is the content of projects/<id>.json: one project and every
// record it owns. Todos holds the checklist rendered as markdown text for
// readers that display it verbatim; TodoItems is the structured form.
type Document struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Metadata    types.ProjectMetadata `json:"metadata"`
	Items       []types.Item          `json:"items"`
	Todos       string                `json:"todos"`
	TodoItems   []types.TodoItem      `json:"todo_items"`
	FileCards   []types.FileCard      `json:"file_cards"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// UnmarshalJSON decodes a document leniently: malformed metadata becomes
// the zero value, and "todos" may be either outline text or a list of todo
// records.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		Metadata json.RawMessage `json:"metadata"`
		Todos    json.RawMessage `json:"todos"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.Metadata = decodeMetadata(aux.Metadata)
	d.Todos = ""
	if len(aux.Todos) > 0 {
		var text string
		var list []types.TodoItem
		if err := json.Unmarshal(aux.Todos, &text); err == nil {
			d.Todos = text
		} else if err := json.Unmarshal(aux.Todos, &list); err == nil && len(d.TodoItems) == 0 {
			d.TodoItems = list
		}
	}
	return nil
}

// decodeMetadata accepts metadata as an object or as a JSON string holding
// an object.
func decodeMetadata(raw json.RawMessage) types.ProjectMetadata {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return types.ParseProjectMetadata(s)
	}
	return types.ParseProjectMetadata(string(raw))
}

// NewDocument returns an empty document for the project.
func NewDocument(p types.Project) *Document {
	return &Document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    p.Metadata,
		Items:       []types.Item{},
		TodoItems:   []types.TodoItem{},
		FileCards:   []types.FileCard{},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Project returns the project header without items.
func (d *Document) Project() types.Project {
	return types.Project{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ProjectWithItems returns the project with its items sorted by order.
func (d *Document) ProjectWithItems() types.Project {
	p := d.Project()
	p.Items = d.sortedItems()
	return p
}

func (d *Document) sortedItems() []types.Item {
	items := slices.Clone(d.Items)
	if items == nil {
		items = []types.Item{}
	}
	slices.SortStableFunc(items, func(a, b types.Item) int { return a.Order - b.Order })
	return items
}

func (d *Document) sortedTodos() []types.TodoItem {
	todos := slices.Clone(d.TodoItems)
	if todos == nil {
		todos = []types.TodoItem{}
	}
	slices.SortStableFunc(todos, func(a, b types.TodoItem) int { return a.Order - b.Order })
	return todos
}

func (d *Document) sortedCards() []types.FileCard {
	cards := slices.Clone(d.FileCards)
	if cards == nil {
		cards = []types.FileCard{}
	}
	slices.SortStableFunc(cards, func(a, b types.FileCard) int { return a.ZIndex - b.ZIndex })
	return cards
}

// SyncTodos re-renders the outline text from TodoItems.
func (d *Document) SyncTodos() {
	d.Todos = types.RenderTodoOutline(d.TodoItems)
}

func (d *Document) clone() *Document {
	c := *d
	c.Items = slices.Clone(d.Items)
	c.TodoItems = slices.Clone(d.TodoItems)
	c.FileCards = slices.Clone(d.FileCards)
	return &c
}

func (d *Document) nextItemOrder() int {
	next := 0
	for _, it := range d.Items {
		next = max(next, it.Order+1)
	}
	return next
}

func (d *Document) nextTodoOrder() int {
	next := 0
	for _, td := range d.TodoItems {
		next = max(next, td.Order+1)
	}
	return next
}

func (d *Document) nextZIndex() int {
	next := 0
	for _, c := range d.FileCards {
		next = max(next, c.ZIndex+1)
	}
	return next
}

// outlineNamespace seeds the ids of todos recovered from outline text so
// that they are stable across loads.
var outlineNamespace = uuid.MustParse("6f1c8f4e-5d0a-4c3b-9a51-2f7e0d9b8a11")

// adoptOutline fills TodoItems from the outline text when the document
// carries only the text form. It needs d.ID, which scopes the recovered ids.
func (d *Document) adoptOutline() {
	if len(d.TodoItems) > 0 || strings.TrimSpace(d.Todos) == "" {
		return
	}
	for i, e := range parseOutline(d.Todos) {
		td := types.NewTodo(
			uuid.NewSHA1(outlineNamespace, []byte(d.ID+"/"+strconv.Itoa(i))).String(),
			d.ID, e.content, e.indent, i, d.UpdatedAt,
		)
		if e.done {
			td.Completed = true
			stamp := d.UpdatedAt
			td.CompletedAt = &stamp
		}
		d.TodoItems = append(d.TodoItems, td)
	}
}

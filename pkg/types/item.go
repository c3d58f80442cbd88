package types

import "time"

// Item is a single entry inside a project. Type-specific fields are stored
// regardless of Type; an empty value means the field is absent.
type Item struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Type            ItemType        `json:"type"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	IDEType         string          `json:"ide_type,omitempty"`
	RemoteIDEType   string          `json:"remote_ide_type,omitempty"`
	CodingAgentType CodingAgentType `json:"coding_agent_type,omitempty"`
	CodingAgentArgs string          `json:"coding_agent_args,omitempty"`
	CodingAgentEnv  string          `json:"coding_agent_env,omitempty"`
	CommandMode     CommandMode     `json:"command_mode,omitempty"`
	CommandCwd      string          `json:"command_cwd,omitempty"`
	CommandHost     string          `json:"command_host,omitempty"`
	Order           int             `json:"order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewItem carries the caller-supplied fields of an item to create. Order and
// timestamps are assigned by the store.
type NewItem struct {
	Type            ItemType
	Title           string
	Content         string
	IDEType         string
	RemoteIDEType   string
	CodingAgentType CodingAgentType
	CodingAgentArgs string
	CodingAgentEnv  string
	CommandMode     CommandMode
	CommandCwd      string
	CommandHost     string
}

// Validate returns ErrInvalidItemType for an unknown item type.
func (n NewItem) Validate() error {
	if !n.Type.Valid() {
		return ErrInvalidItemType
	}
	return nil
}

// Build returns the item described by n with the given identity fields.
func (n NewItem) Build(id, projectID string, order int, now time.Time) Item {
	return Item{
		ID:              id,
		ProjectID:       projectID,
		Type:            n.Type,
		Title:           n.Title,
		Content:         n.Content,
		IDEType:         n.IDEType,
		RemoteIDEType:   n.RemoteIDEType,
		CodingAgentType: n.CodingAgentType,
		CodingAgentArgs: n.CodingAgentArgs,
		CodingAgentEnv:  n.CodingAgentEnv,
		CommandMode:     n.CommandMode,
		CommandCwd:      n.CommandCwd,
		CommandHost:     n.CommandHost,
		Order:           order,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ItemUpdate lists the item fields to change. A nil field is kept. For the
// optional fields a pointer to the empty value clears the field and any
// other value sets it.
type ItemUpdate struct {
	Title   *string
	Content *string
	Order   *int

	IDEType         *string
	RemoteIDEType   *string
	CodingAgentType *CodingAgentType
	CodingAgentArgs *string
	CodingAgentEnv  *string
	CommandMode     *CommandMode
	CommandCwd      *string
	CommandHost     *string
}

// Apply writes the provided fields onto it. It does not touch timestamps.
func (u ItemUpdate) Apply(it *Item) {
	setIf(&it.Title, u.Title)
	setIf(&it.Content, u.Content)
	setIf(&it.Order, u.Order)
	setIf(&it.IDEType, u.IDEType)
	setIf(&it.RemoteIDEType, u.RemoteIDEType)
	setIf(&it.CodingAgentType, u.CodingAgentType)
	setIf(&it.CodingAgentArgs, u.CodingAgentArgs)
	setIf(&it.CodingAgentEnv, u.CodingAgentEnv)
	setIf(&it.CommandMode, u.CommandMode)
	setIf(&it.CommandCwd, u.CommandCwd)
	setIf(&it.CommandHost, u.CommandHost)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v. It is a convenience for building updates.
func Ptr[T any](v T) *T { return &v }

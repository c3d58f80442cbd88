package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewItemValidate(t *testing.T) {
	assert.NoError(t, NewItem{Type: ItemTypeCommand}.Validate())
	assert.ErrorIs(t, NewItem{Type: "bogus"}.Validate(), ErrInvalidItemType)
	assert.ErrorIs(t, NewItem{}.Validate(), ErrInvalidItemType)
}

func TestNewItemBuild(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	it := NewItem{Type: ItemTypeCommand, Title: "test", Content: "go test ./...", CommandMode: CommandModeOutput}.
		Build("i1", "p1", 4, now)

	assert.Equal(t, "i1", it.ID)
	assert.Equal(t, "p1", it.ProjectID)
	assert.Equal(t, 4, it.Order)
	assert.Equal(t, CommandModeOutput, it.CommandMode)
	assert.Equal(t, now, it.CreatedAt)
	assert.Equal(t, now, it.UpdatedAt)
}

func TestItemUpdateThreeState(t *testing.T) {
	tests := []struct {
		name   string
		update ItemUpdate
		want   string
	}{
		{name: "not provided keeps value", update: ItemUpdate{}, want: "foo"},
		{name: "empty clears value", update: ItemUpdate{CodingAgentArgs: Ptr("")}, want: ""},
		{name: "non-empty sets value", update: ItemUpdate{CodingAgentArgs: Ptr("bar")}, want: "bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Item{Title: "agent", CodingAgentArgs: "foo", CodingAgentType: CodingAgentClaudeCode}
			tt.update.Apply(&it)
			assert.Equal(t, tt.want, it.CodingAgentArgs)
			assert.Equal(t, "agent", it.Title)
			assert.Equal(t, CodingAgentClaudeCode, it.CodingAgentType)
		})
	}
}

func TestItemUpdateClearsEnums(t *testing.T) {
	it := Item{CommandMode: CommandModeBackground, CodingAgentType: CodingAgentOpencode, IDEType: "goland"}
	ItemUpdate{
		CommandMode:     Ptr(CommandMode("")),
		CodingAgentType: Ptr(CodingAgentType("")),
		IDEType:         Ptr("zed"),
		Order:           Ptr(7),
	}.Apply(&it)

	assert.Empty(t, it.CommandMode)
	assert.Empty(t, it.CodingAgentType)
	assert.Equal(t, "zed", it.IDEType)
	assert.Equal(t, 7, it.Order)
}

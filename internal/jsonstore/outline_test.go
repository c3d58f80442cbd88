package jsonstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func TestParseOutline(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []outlineEntry
	}{
		{
			name: "empty",
			src:  "",
			want: nil,
		},
		{
			name: "flat",
			src:  "- [ ] one\n- [x] two\n- [X] three",
			want: []outlineEntry{{"one", false, 0}, {"two", true, 0}, {"three", true, 0}},
		},
		{
			name: "nested",
			src:  "- [ ] parent\n  - [ ] child\n    - [x] grandchild\n- [ ] sibling",
			want: []outlineEntry{{"parent", false, 0}, {"child", false, 1}, {"grandchild", true, 2}, {"sibling", false, 0}},
		},
		{
			name: "ignores prose and plain bullets",
			src:  "# Plan\n\nSome text.\n\n- plain bullet\n- [ ] real task",
			want: []outlineEntry{{"real task", false, 0}},
		},
		{
			name: "indent jumps more than one level",
			src:  "- [ ] a\n      - [ ] b\n  - [ ] c",
			want: []outlineEntry{{"a", false, 0}, {"b", false, 3}, {"c", false, 1}},
		},
		{
			name: "deep first entry",
			src:  "        - [x] four deep",
			want: []outlineEntry{{"four deep", true, 4}},
		},
		{
			name: "tabs and carriage returns",
			src:  "- [ ] top\r\n\t- [ ] tabbed\r\n",
			want: []outlineEntry{{"top", false, 0}, {"tabbed", false, 1}},
		},
		{
			name: "other bullet markers",
			src:  "* [ ] star\n\n1. [x] numbered",
			want: []outlineEntry{{"star", false, 0}, {"numbered", true, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOutline(tt.src))
		})
	}
}

func TestParseOutline_RoundTripsRenderedTodos(t *testing.T) {
	todos := []types.TodoItem{
		{Content: "ship", Order: 0},
		{Content: "write notes", Order: 1, IndentLevel: 1, Completed: true},
		{Content: "tag release", Order: 2, IndentLevel: 4},
		{Content: "announce", Order: 3, IndentLevel: 1},
	}
	got := parseOutline(types.RenderTodoOutline(todos))
	assert.Equal(t, []outlineEntry{
		{"ship", false, 0},
		{"write notes", true, 1},
		{"tag release", false, 4},
		{"announce", false, 1},
	}, got)
}

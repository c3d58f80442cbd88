package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTodoClampsIndent(t *testing.T) {
	td := NewTodo("t1", "p1", "write tests", -3, 0, time.Now().UTC())
	assert.Equal(t, 0, td.IndentLevel)
	assert.False(t, td.Completed)
	assert.Nil(t, td.CompletedAt)
}

func TestTodoUpdateCompletionTimestamp(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)

	td := NewTodo("t1", "p1", "ship", 0, 0, t0)

	TodoUpdate{Completed: Ptr(true)}.Apply(&td, t1)
	require.NotNil(t, td.CompletedAt)
	assert.Equal(t, t1, *td.CompletedAt)

	TodoUpdate{Completed: Ptr(true), Content: Ptr("ship it")}.Apply(&td, t2)
	require.NotNil(t, td.CompletedAt)
	assert.Equal(t, t1, *td.CompletedAt, "staying completed keeps the first stamp")
	assert.Equal(t, "ship it", td.Content)

	TodoUpdate{Completed: Ptr(false)}.Apply(&td, t2)
	assert.Nil(t, td.CompletedAt)
	assert.False(t, td.Completed)

	TodoUpdate{Completed: Ptr(true)}.Apply(&td, t3)
	require.NotNil(t, td.CompletedAt)
	assert.Equal(t, t3, *td.CompletedAt)
	assert.Equal(t, t3, td.UpdatedAt)
}

func TestTodoUpdateIndentClamp(t *testing.T) {
	td := TodoItem{IndentLevel: 2}
	TodoUpdate{IndentLevel: Ptr(-1)}.Apply(&td, time.Now().UTC())
	assert.Equal(t, 0, td.IndentLevel)
}

func TestProgressOf(t *testing.T) {
	assert.Equal(t, TodoProgress{}, ProgressOf(nil))

	p := ProgressOf([]TodoItem{{Completed: true}, {}, {}, {Completed: true}})
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 2, p.Completed)
	assert.InDelta(t, 50.0, p.Percentage, 0.001)
}

func TestRenderTodoOutline(t *testing.T) {
	assert.Empty(t, RenderTodoOutline(nil))

	todos := []TodoItem{
		{Content: "child", Order: 1, IndentLevel: 1, Completed: true},
		{Content: "parent", Order: 0},
		{Content: "grandchild", Order: 2, IndentLevel: 2},
	}
	want := "- [ ] parent\n  - [x] child\n    - [ ] grandchild"
	assert.Equal(t, want, RenderTodoOutline(todos))
	assert.Equal(t, "child", todos[0].Content, "input is not reordered")
}

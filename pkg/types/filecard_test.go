package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileCardRowFlags(t *testing.T) {
	c := FileCard{ID: "c1", IsExpanded: true, ZIndex: 2}
	row := c.Row()
	assert.Equal(t, 1, row.IsExpanded)
	assert.Equal(t, 0, row.IsMinimized)
	assert.Equal(t, c, row.Card())

	assert.True(t, FileCardRow{IsMinimized: 5}.Card().IsMinimized)
}

func TestNewFileCardBuild(t *testing.T) {
	now := time.Now().UTC()
	c := NewFileCard{Filename: "main.go", FilePath: "/src/main.go", PositionX: 10, PositionY: 20}.Build("c1", "p1", 3, now)
	assert.False(t, c.IsExpanded)
	assert.False(t, c.IsMinimized)
	assert.Equal(t, 3, c.ZIndex)
	assert.Equal(t, 20.0, c.PositionY)
}

func TestFileCardUpdateApply(t *testing.T) {
	c := FileCard{PositionX: 1, PositionY: 2, ZIndex: 0}
	FileCardUpdate{PositionX: Ptr(5.5), IsMinimized: Ptr(true)}.Apply(&c)
	assert.Equal(t, 5.5, c.PositionX)
	assert.Equal(t, 2.0, c.PositionY)
	assert.True(t, c.IsMinimized)
	assert.False(t, c.IsExpanded)
}

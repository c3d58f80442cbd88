package types

import "time"

// FileCard is a file pinned onto a project's canvas.
type FileCard struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Filename    string    `json:"filename"`
	FilePath    string    `json:"file_path"`
	PositionX   float64   `json:"position_x"`
	PositionY   float64   `json:"position_y"`
	IsExpanded  bool      `json:"is_expanded"`
	IsMinimized bool      `json:"is_minimized"`
	ZIndex      int       `json:"z_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Row returns the card in its export form.
func (c FileCard) Row() FileCardRow {
	return FileCardRow{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		Filename:    c.Filename,
		FilePath:    c.FilePath,
		PositionX:   c.PositionX,
		PositionY:   c.PositionY,
		IsExpanded:  boolToInt(c.IsExpanded),
		IsMinimized: boolToInt(c.IsMinimized),
		ZIndex:      c.ZIndex,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FileCardRow is the export form of a file card, with flags as 0/1.
type FileCardRow struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Filename    string    `json:"filename"`
	FilePath    string    `json:"file_path"`
	PositionX   float64   `json:"position_x"`
	PositionY   float64   `json:"position_y"`
	IsExpanded  int       `json:"is_expanded"`
	IsMinimized int       `json:"is_minimized"`
	ZIndex      int       `json:"z_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Card converts the row back to a FileCard. Any non-zero flag is true.
func (r FileCardRow) Card() FileCard {
	return FileCard{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Filename:    r.Filename,
		FilePath:    r.FilePath,
		PositionX:   r.PositionX,
		PositionY:   r.PositionY,
		IsExpanded:  r.IsExpanded != 0,
		IsMinimized: r.IsMinimized != 0,
		ZIndex:      r.ZIndex,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewFileCard carries the caller-supplied fields of a card to create.
type NewFileCard struct {
	Filename  string
	FilePath  string
	PositionX float64
	PositionY float64
}

// Build returns a collapsed, visible card at the given stacking position.
func (n NewFileCard) Build(id, projectID string, zIndex int, now time.Time) FileCard {
	return FileCard{
		ID:        id,
		ProjectID: projectID,
		Filename:  n.Filename,
		FilePath:  n.FilePath,
		PositionX: n.PositionX,
		PositionY: n.PositionY,
		ZIndex:    zIndex,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FileCardUpdate lists the card fields to change; nil fields are kept.
type FileCardUpdate struct {
	PositionX   *float64
	PositionY   *float64
	IsExpanded  *bool
	IsMinimized *bool
	ZIndex      *int
}

// Apply writes the provided fields onto c.
func (u FileCardUpdate) Apply(c *FileCard) {
	setIf(&c.PositionX, u.PositionX)
	setIf(&c.PositionY, u.PositionY)
	setIf(&c.IsExpanded, u.IsExpanded)
	setIf(&c.IsMinimized, u.IsMinimized)
	setIf(&c.ZIndex, u.ZIndex)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

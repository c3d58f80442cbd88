package types

import (
	"encoding/json"
	"strings"
	"time"
)

// OtherLink is a labelled external link shown on a project.
type OtherLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// WorkingDir is a named directory, optionally on a remote host, that
// commands and IDE shortcuts of a project can run in.
type WorkingDir struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Host string `json:"host,omitempty"`
}

// ProjectMetadata holds the free-form presentation data of a project.
type ProjectMetadata struct {
	GithubURL    string       `json:"github_url,omitempty"`
	CustomURL    string       `json:"custom_url,omitempty"`
	OtherLinks   []OtherLink  `json:"other_links,omitempty"`
	WorkingDirs  []WorkingDir `json:"working_dirs,omitempty"`
	SectionOrder []string     `json:"section_order,omitempty"`
}

// ParseProjectMetadata decodes a stored metadata blob. Malformed or empty
// input yields the zero value; it never fails.
func ParseProjectMetadata(raw string) ProjectMetadata {
	var m ProjectMetadata
	if strings.TrimSpace(raw) == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ProjectMetadata{}
	}
	return m
}

// Encode returns the metadata as a JSON string, or "{}" if it cannot be
// marshalled.
func (m ProjectMetadata) Encode() string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Project is the top-level aggregate. Items is populated only by
// single-project reads.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metadata    ProjectMetadata `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []Item          `json:"items,omitempty"`
}

// Row flattens the project into its export form.
func (p Project) Row() ProjectRow {
	return ProjectRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    p.Metadata.Encode(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectRow is a project with its metadata kept as a raw JSON string, as
// found in export files.
type ProjectRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Project expands the row, decoding its metadata leniently.
func (r ProjectRow) Project() Project {
	return Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Metadata:    ParseProjectMetadata(r.Metadata),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewProject carries the caller-supplied fields of a project to create.
type NewProject struct {
	Name        string
	Description string
	Metadata    ProjectMetadata
}

// Validate returns ErrInvalidName when the name is blank.
func (n NewProject) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// ProjectUpdate lists the project fields to change; nil fields are kept.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Metadata    *ProjectMetadata
}

// Apply writes the provided fields onto p. A blank name is ignored.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Metadata != nil {
		p.Metadata = *u.Metadata
	}
}

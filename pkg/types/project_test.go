package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProjectMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ProjectMetadata
	}{
		{name: "empty string", raw: "", want: ProjectMetadata{}},
		{name: "malformed json", raw: "{not json", want: ProjectMetadata{}},
		{name: "wrong shape", raw: `{"github_url": 42}`, want: ProjectMetadata{}},
		{
			name: "full",
			raw:  `{"github_url":"https://github.com/a/b","working_dirs":[{"name":"src","path":"/src","host":"box"}],"section_order":["notes","links"]}`,
			want: ProjectMetadata{
				GithubURL:    "https://github.com/a/b",
				WorkingDirs:  []WorkingDir{{Name: "src", Path: "/src", Host: "box"}},
				SectionOrder: []string{"notes", "links"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProjectMetadata(tt.raw))
		})
	}
}

func TestProjectMetadataEncode(t *testing.T) {
	assert.Equal(t, "{}", ProjectMetadata{}.Encode())

	m := ProjectMetadata{CustomURL: "https://example.com", OtherLinks: []OtherLink{{Label: "ci", URL: "https://ci"}}}
	assert.Equal(t, m, ParseProjectMetadata(m.Encode()))
}

func TestProjectRowRoundTrip(t *testing.T) {
	p := Project{
		ID:       "p1",
		Name:     "Alpha",
		Metadata: ProjectMetadata{GithubURL: "https://github.com/x/y"},
	}
	row := p.Row()
	assert.JSONEq(t, `{"github_url":"https://github.com/x/y"}`, row.Metadata)
	assert.Equal(t, p, row.Project())
}

func TestNewProjectValidate(t *testing.T) {
	assert.ErrorIs(t, NewProject{Name: "   "}.Validate(), ErrInvalidName)
	assert.NoError(t, NewProject{Name: "Alpha"}.Validate())
}

func TestProjectUpdateApply(t *testing.T) {
	p := Project{Name: "Alpha", Description: "first"}

	ProjectUpdate{Description: Ptr("")}.Apply(&p)
	assert.Equal(t, "Alpha", p.Name)
	assert.Empty(t, p.Description)

	ProjectUpdate{Name: Ptr(" ")}.Apply(&p)
	assert.Equal(t, "Alpha", p.Name, "blank names are ignored")

	ProjectUpdate{Name: Ptr("Beta"), Metadata: &ProjectMetadata{CustomURL: "u"}}.Apply(&p)
	assert.Equal(t, "Beta", p.Name)
	assert.Equal(t, "u", p.Metadata.CustomURL)
}

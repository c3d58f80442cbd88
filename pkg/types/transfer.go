package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/devora/internal/atomicfile"
)

// ExportVersion is the format version written into export files.
const ExportVersion = "1.0"

// ExportData is the portable envelope produced by Store.Export.
type ExportData struct {
	Version    string        `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	Projects   []ProjectRow  `json:"projects"`
	Items      []Item        `json:"items"`
	FileCards  []FileCardRow `json:"fileCards,omitempty"`
}

// ImportData is the envelope accepted by Store.Import. An ExportData file
// decodes into it directly.
type ImportData struct {
	Projects  []ProjectRow  `json:"projects"`
	Items     []Item        `json:"items"`
	FileCards []FileCardRow `json:"fileCards,omitempty"`
}

// ImportData returns the importable part of the export.
func (e ExportData) ImportData() ImportData {
	return ImportData{Projects: e.Projects, Items: e.Items, FileCards: e.FileCards}
}

// ImportResult counts what an import wrote and what it skipped.
type ImportResult struct {
	ProjectsImported  int `json:"projectsImported"`
	ItemsImported     int `json:"itemsImported"`
	FileCardsImported int `json:"fileCardsImported"`
	Skipped           int `json:"skipped"`
}

// ImportMode selects how an import treats existing data.
type ImportMode string

// Import modes. Merge keeps existing records and skips colliding ids;
// replace deletes every project first.
const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

// ParseImportMode maps "replace" to ImportReplace and anything else to
// ImportMerge.
func ParseImportMode(s string) ImportMode {
	if ImportMode(s) == ImportReplace {
		return ImportReplace
	}
	return ImportMerge
}

// WriteExportFile writes data as indented JSON to path. The file is
// replaced atomically.
func WriteExportFile(path string, data *ExportData) error {
	if err := atomicfile.WriteJSON(path, data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// ErrUnsupportedExport is returned for export files written by an
// incompatible format version.
var ErrUnsupportedExport = errors.New("unsupported export version")

// ReadExportFile decodes an export file into an ImportData. Files without
// a version are accepted; a version whose major number differs from
// ExportVersion's is not.
func ReadExportFile(path string) (ImportData, error) {
	var data ImportData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("reading %s: %w", path, err)
	}
	if v := gjson.GetBytes(raw, "version"); v.Exists() && !sameMajor(v.String(), ExportVersion) {
		return data, fmt.Errorf("%s: %w %q", path, ErrUnsupportedExport, v.String())
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decoding %s: %w", path, err)
	}
	return data, nil
}

func sameMajor(a, b string) bool {
	ma, _, _ := strings.Cut(a, ".")
	mb, _, _ := strings.Cut(b, ".")
	return ma == mb
}

package jsonstore

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var outlineMarkdown = goldmark.New(goldmark.WithExtensions(extension.TaskList))

var checkboxPrefix = regexp.MustCompile(`^\s*\[[ xX]\]\s*`)

// outlineIndentWidth is the number of leading spaces per nesting level, as
// written by types.RenderTodoOutline. A tab counts as one level.
const outlineIndentWidth = 2

type outlineEntry struct {
	content string
	done    bool
	indent  int
}

// parseOutline returns the task-list entries of a checklist in line order.
// Each line is one entry; its indent is the number of leading spaces
// divided by two, so levels may jump by more than one. Lines that are not
// task-list items are ignored.
func parseOutline(src string) []outlineEntry {
	var out []outlineEntry
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")
		body := strings.TrimLeft(line, " \t")
		if body == "" {
			continue
		}
		e, ok := parseOutlineLine(body)
		if !ok {
			continue
		}
		e.indent = outlineIndent(line[:len(line)-len(body)])
		out = append(out, e)
	}
	return out
}

func outlineIndent(lead string) int {
	width := 0
	for _, r := range lead {
		if r == '\t' {
			width += outlineIndentWidth
		} else {
			width++
		}
	}
	return width / outlineIndentWidth
}

// parseOutlineLine parses one unindented line as markdown and reports
// whether it is a single task-list item.
func parseOutlineLine(body string) (outlineEntry, bool) {
	source := []byte(body)
	root := outlineMarkdown.Parser().Parse(text.NewReader(source))

	list := root.FirstChild()
	if list == nil || list.Kind() != ast.KindList {
		return outlineEntry{}, false
	}
	item := list.FirstChild()
	if item == nil {
		return outlineEntry{}, false
	}
	block := item.FirstChild()
	if block == nil || block.Lines().Len() == 0 {
		return outlineEntry{}, false
	}
	box, ok := block.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return outlineEntry{}, false
	}
	seg := block.Lines().At(0)
	line := string(seg.Value(source))
	return outlineEntry{
		content: strings.TrimSpace(checkboxPrefix.ReplaceAllString(line, "")),
		done:    box.IsChecked,
	}, true
}

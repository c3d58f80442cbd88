package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// printer writes command results either as indented JSON or as text,
// colored only when writing to a terminal.
type printer struct {
	w        io.Writer
	jsonMode bool

	accent *color.Color
	muted  *color.Color
	ok     *color.Color
}

func (a *app) printer(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	p := &printer{
		w:        w,
		jsonMode: a.jsonMode,
		accent:   color.New(color.FgCyan, color.Bold),
		muted:    color.New(color.Faint),
		ok:       color.New(color.FgGreen),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.accent, p.muted, p.ok} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// JSON writes v as indented JSON followed by a newline.
func (p *printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Result prints v as JSON in JSON mode, otherwise calls text.
func (p *printer) Result(v any, text func()) error {
	if p.jsonMode {
		return p.JSON(v)
	}
	text()
	return nil
}

// Done prints a confirmation line in text mode.
func (p *printer) Done(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Table writes rows aligned in columns under a header.
func (p *printer) Table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, p.accent.Sprint(h))
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

// Field prints a "label: value" line.
func (p *printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.muted.Sprint(label+":"), value)
}

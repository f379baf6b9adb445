package background

import (
	"strings"

	"github.com/deixis/nbtools/internal/notebook"
)

// Directives describes how runtime directives are spelled in cell source.
type Directives struct {
	CellPrefix string // marks a cell-level directive on a cell's first line, e.g. "%%"
	LinePrefix string // marks a single-line directive anywhere, e.g. "%"
	Terminal   string // cell directive naming the invoking cell, e.g. "background"
}

// DefaultDirectives matches IPython magics and the %%background directive.
var DefaultDirectives = Directives{CellPrefix: "%%", LinePrefix: "%", Terminal: "background"}

// Reconstruction is the code rebuilt from a notebook document.
type Reconstruction struct {
	Source     string
	Cells      int  // number of cells that contributed source
	Terminated bool // the terminal directive cell was found
}

// Reconstruct concatenates the code cells of doc up to and including the
// first cell whose directive is d.Terminal.
//
// Cells that are not code or have no source are skipped. A cell opened by
// any other cell directive is skipped whole. From included cells every
// line starting with d.LinePrefix is dropped; the remaining lines are
// joined with "\n" and followed by one "\n".
func Reconstruct(doc *notebook.Document, d Directives) Reconstruction {
	var (
		b   strings.Builder
		out Reconstruction
	)
	for _, cell := range doc.Cells {
		if !cell.IsCode() || len(cell.Source) == 0 {
			continue
		}

		lines := []string(cell.Source)
		terminal := false
		if name, ok := d.cellDirective(lines[0]); ok {
			if name != d.Terminal {
				// Other cell directives (e.g. %%bash) change how the cell
				// is executed, so its body is not plain code.
				continue
			}
			lines = lines[1:]
			terminal = true
		}

		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if d.LinePrefix != "" && strings.HasPrefix(line, d.LinePrefix) {
				continue
			}
			kept = append(kept, line)
		}
		b.WriteString(strings.Join(kept, "\n"))
		b.WriteByte('\n')
		out.Cells++

		if terminal {
			out.Terminated = true
			break
		}
	}
	out.Source = b.String()
	return out
}

// cellDirective reports whether line opens a cell directive and returns
// its name: the text after the prefix up to the first space or tab.
func (d Directives) cellDirective(line string) (string, bool) {
	if d.CellPrefix == "" || !strings.HasPrefix(line, d.CellPrefix) {
		return "", false
	}
	rest := line[len(d.CellPrefix):]
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

package background

import (
	"testing"

	"github.com/deixis/nbtools/internal/notebook"
	"github.com/stretchr/testify/assert"
)

func code(lines ...string) notebook.Cell {
	return notebook.Cell{Type: notebook.Code, Source: lines}
}

func markdown(lines ...string) notebook.Cell {
	return notebook.Cell{Type: notebook.Markdown, Source: lines}
}

func doc(cells ...notebook.Cell) *notebook.Document {
	return &notebook.Document{Cells: cells}
}

func TestReconstruct_DirectiveOnlyTerminalCell(t *testing.T) {
	got := Reconstruct(doc(
		code("import os", ""),
		code("%%background"),
		code("x = 1"),
	), DefaultDirectives)

	assert.Equal(t, "import os\n\n\n", got.Source)
	assert.Equal(t, 2, got.Cells)
	assert.True(t, got.Terminated)
}

func TestReconstruct_OnlyMarkdownAndEmpty(t *testing.T) {
	got := Reconstruct(doc(
		markdown("# Title"),
		code(),
		notebook.Cell{Type: "raw", Source: notebook.Source{"raw text"}},
	), DefaultDirectives)

	assert.Empty(t, got.Source)
	assert.Zero(t, got.Cells)
	assert.False(t, got.Terminated)
}

func TestReconstruct_StopsAfterTerminalCell(t *testing.T) {
	got := Reconstruct(doc(
		code("a = 1"),
		code("b = 2", "c = 3"),
		code("%%background --quiet", "train(a, b)"),
		code("after = True"),
		code("%%background", "never()"),
	), DefaultDirectives)

	assert.Equal(t, "a = 1\nb = 2\nc = 3\ntrain(a, b)\n", got.Source)
	assert.Equal(t, 3, got.Cells)
	assert.True(t, got.Terminated)
	assert.NotContains(t, got.Source, "after")
}

func TestReconstruct_SkipsOtherCellDirectives(t *testing.T) {
	got := Reconstruct(doc(
		code("x = 1"),
		code("%%bash", "rm -rf build"),
		code("%%timeit", "slow()"),
		code("y = 2"),
	), DefaultDirectives)

	assert.Equal(t, "x = 1\ny = 2\n", got.Source)
	assert.Equal(t, 2, got.Cells)
	assert.False(t, got.Terminated)
}

func TestReconstruct_DropsLineDirectivesAnywhere(t *testing.T) {
	got := Reconstruct(doc(
		code("%load_ext autoreload", "import numpy as np", "%matplotlib inline", "z = np.zeros(3)", "%time z.sum()"),
		code("%%background", "%env FOO=1", "print(z)"),
	), DefaultDirectives)

	assert.Equal(t, "import numpy as np\nz = np.zeros(3)\nprint(z)\n", got.Source)
	assert.True(t, got.Terminated)
}

func TestReconstruct_DirectiveNameMustMatchExactly(t *testing.T) {
	got := Reconstruct(doc(
		code("%%backgrounds", "skipped()"),
		code("kept()"),
	), DefaultDirectives)

	assert.Equal(t, "kept()\n", got.Source)
	assert.False(t, got.Terminated)
}

func TestReconstruct_IndentedDirectiveIsCode(t *testing.T) {
	got := Reconstruct(doc(
		code("if True:", "    %time x = 1", "    y = 2"),
	), DefaultDirectives)

	assert.Equal(t, "if True:\n    %time x = 1\n    y = 2\n", got.Source)
}

func TestReconstruct_CustomDirectives(t *testing.T) {
	d := Directives{CellPrefix: "##", LinePrefix: "#!", Terminal: "bg"}
	got := Reconstruct(doc(
		code("#!magic", "a = 1"),
		code("%%background", "b = 2"),
		code("##bg", "c = 3"),
		code("d = 4"),
	), d)

	assert.Equal(t, "a = 1\n%%background\nb = 2\nc = 3\n", got.Source)
	assert.True(t, got.Terminated)
}

func TestReconstruct_RoundTrip(t *testing.T) {
	cells := [][]string{
		{"import json", "data = {}"},
		{""},
		{"for k in data:", "    print(k)"},
	}
	var nb []notebook.Cell
	want := ""
	for _, lines := range cells {
		nb = append(nb, code(lines...))
		for i, l := range lines {
			if i > 0 {
				want += "\n"
			}
			want += l
		}
		want += "\n"
	}

	got := Reconstruct(doc(nb...), DefaultDirectives)
	assert.Equal(t, want, got.Source)
	assert.Equal(t, "import json\ndata = {}\n\nfor k in data:\n    print(k)\n", got.Source)
}

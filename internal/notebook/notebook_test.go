package notebook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ListSource(t *testing.T) {
	doc, err := Parse([]byte(`{
		"nbformat": 4, "nbformat_minor": 5,
		"cells": [
			{"cell_type": "code", "source": ["import os\n", "print(os.getcwd())"]},
			{"cell_type": "markdown", "source": ["# Title"]}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)

	assert.Equal(t, 4, doc.NBFormat)
	assert.True(t, doc.Cells[0].IsCode())
	assert.Equal(t, Source{"import os", "print(os.getcwd())"}, doc.Cells[0].Source)
	assert.Equal(t, Markdown, doc.Cells[1].Type)
}

func TestParse_StringSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Source
	}{
		{"empty", `""`, nil},
		{"single line", `"x = 1"`, Source{"x = 1"}},
		{"trailing newline", `"a\nb\n"`, Source{"a", "b"}},
		{"blank line kept", `"a\n\nb"`, Source{"a", "", "b"}},
		{"crlf", `"a\r\nb"`, Source{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(`{"cells": [{"cell_type": "code", "source": ` + tt.src + `}]}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Cells[0].Source)
		})
	}
}

func TestParse_NewlineFreeLines(t *testing.T) {
	doc, err := Parse([]byte(`{"cells": [{"cell_type": "code", "source": ["import os", ""]}]}`))
	require.NoError(t, err)
	assert.Equal(t, Source{"import os", ""}, doc.Cells[0].Source)
}

func TestParse_BadSource(t *testing.T) {
	_, err := Parse([]byte(`{"cells": [{"cell_type": "code", "source": [1, 2]}]}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"cells": [{"cell_type": "code", "source": {"a": 1}}]}`))
	require.Error(t, err)
}

func TestSource_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Source{"a", "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `["a\n", "b"]`, string(data))

	var back Source
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Source{"a", "b"}, back)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nb.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(`{"cells": [{"cell_type": "code", "source": ["x = 1"]}]}`), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.Cells, 1)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "bad.ipynb")
	require.NoError(t, os.WriteFile(invalid, []byte("{not json"), 0o644))

	for _, path := range []string{filepath.Join(dir, "missing.ipynb"), invalid} {
		_, err := Load(path)
		require.Error(t, err)

		var readErr *DocumentReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, path, readErr.Path)
		assert.Contains(t, err.Error(), path)
	}
}

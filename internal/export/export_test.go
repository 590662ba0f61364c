package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chazuruo/reelflix/internal/history"
)

var exportNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testEntries() []history.Entry {
	return []history.Entry{
		{ID: "id-2", Query: "space | opera", Timestamp: exportNow.Add(-5 * time.Minute).UnixMilli()},
		{ID: "id-1", Query: "noir", Timestamp: exportNow.Add(-26 * time.Hour).UnixMilli()},
	}
}

func fixedNow() time.Time { return exportNow }

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"markdown format", Options{Format: FormatMarkdown}, false},
		{"yaml format", Options{Format: FormatYAML}, false},
		{"json format", Options{Format: FormatJSON}, false},
		{"invalid format", Options{Format: Format("invalid")}, true},
		{"template with json", Options{Format: FormatJSON, CustomTemplate: "x.tmpl"}, true},
		{"missing template", Options{Format: FormatMarkdown, CustomTemplate: "/nonexistent/x.tmpl"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExporter(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExport_JSON(t *testing.T) {
	e, err := NewExporter(Options{Format: FormatJSON, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(testEntries())
	require.NoError(t, err)

	var doc struct {
		Count   int `json:"count"`
		Entries []struct {
			ID        string `json:"id"`
			Query     string `json:"query"`
			Timestamp int64  `json:"timestamp"`
			Age       string `json:"age"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "id-2", doc.Entries[0].ID)
	assert.Equal(t, "space | opera", doc.Entries[0].Query)
	assert.Equal(t, "5m ago", doc.Entries[0].Age)
	assert.Equal(t, "1d ago", doc.Entries[1].Age)
}

func TestExport_YAML(t *testing.T) {
	e, err := NewExporter(Options{Format: FormatYAML, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(testEntries())
	require.NoError(t, err)

	var doc struct {
		Count   int `yaml:"count"`
		Entries []struct {
			ID    string `yaml:"id"`
			Query string `yaml:"query"`
			Age   string `yaml:"age"`
		} `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "noir", doc.Entries[1].Query)
	assert.Equal(t, "1d ago", doc.Entries[1].Age)
}

func TestExport_Markdown(t *testing.T) {
	e, err := NewExporter(Options{Format: FormatMarkdown, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(testEntries())
	require.NoError(t, err)

	assert.Contains(t, out, "# Recent Searches")
	assert.Contains(t, out, `| 1 | space \| opera | 2024-06-01 11:55 | 5m ago |`)
	assert.Contains(t, out, "| 2 | noir |")
	assert.Contains(t, out, "Exported by reelflix on 2024-06-01 12:00 UTC")
}

func TestExport_MarkdownEmpty(t *testing.T) {
	e, err := NewExporter(Options{Format: FormatMarkdown, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "_No recent searches._")
}

func TestExport_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "plain.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("{{range .Entries}}{{.Query}}\n{{end}}"), 0644))

	e, err := NewExporter(Options{Format: FormatMarkdown, CustomTemplate: tmplPath, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(testEntries())
	require.NoError(t, err)
	assert.Equal(t, []string{"space | opera", "noir"}, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestExport_WritesFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "history.json")

	e, err := NewExporter(Options{Format: FormatJSON, Out: outPath, Now: fixedNow})
	require.NoError(t, err)

	out, err := e.Export(testEntries())
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

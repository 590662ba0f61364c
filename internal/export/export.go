// Package export renders the search history for use outside the app.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/reelflix/internal/history"
)

// Format represents the export format.
type Format string

const (
	// FormatMarkdown exports as a Markdown table.
	FormatMarkdown Format = "md"
	// FormatYAML exports as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON exports as JSON.
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown}

// Options contains export options.
type Options struct {
	Format Format

	// Out is the file to write; empty or "-" means return only.
	Out string

	// CustomTemplate is a text/template file used instead of the built-in
	// Markdown template. Only valid with FormatMarkdown.
	CustomTemplate string

	// Now is the reference time for relative ages (default: time.Now).
	Now func() time.Time
}

// Exporter exports the search history in one format.
type Exporter struct {
	format   Format
	outPath  string
	template *template.Template
	now      func() time.Time
}

// Document is the exported form of the history.
type Document struct {
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Count      int            `json:"count" yaml:"count"`
	Entries    []DocumentItem `json:"entries" yaml:"entries"`
}

// DocumentItem is one exported entry.
type DocumentItem struct {
	history.Entry `yaml:",inline"`
	SearchedAt    time.Time `json:"searched_at" yaml:"searched_at"`
	Age           string    `json:"age" yaml:"age"`
}

// NewExporter creates a new exporter.
func NewExporter(opts Options) (*Exporter, error) {
	e := &Exporter{
		format:  opts.Format,
		outPath: opts.Out,
		now:     opts.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}

	switch e.format {
	case FormatJSON, FormatYAML:
		if opts.CustomTemplate != "" {
			return nil, fmt.Errorf("custom templates are only supported for the %s format", FormatMarkdown)
		}
	case FormatMarkdown:
		tmpl, err := loadTemplate(opts.CustomTemplate)
		if err != nil {
			return nil, err
		}
		e.template = tmpl
	default:
		return nil, fmt.Errorf("unsupported format: %s", e.format)
	}

	return e, nil
}

// loadTemplate parses the template at path, or the built-in one if path is empty.
// Relative names are also looked up in ~/.config/reelflix/templates/.
func loadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.New("export").Funcs(templateFuncs).Parse(builtinMarkdownTemplate)
	}

	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if homeDir, herr := os.UserHomeDir(); herr == nil {
				configPath := filepath.Join(homeDir, ".config", "reelflix", "templates", filepath.Base(path))
				if _, err := os.Stat(configPath); err == nil {
					path = configPath
				}
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}

	return template.New("export").Funcs(templateFuncs).Parse(string(data))
}

// Export renders entries and, when an output path is set, writes them there.
func (e *Exporter) Export(entries []history.Entry) (string, error) {
	doc := e.document(entries)

	var buf bytes.Buffer
	switch e.format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return "", fmt.Errorf("encoding JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
	case FormatMarkdown:
		if err := e.template.Execute(&buf, doc); err != nil {
			return "", fmt.Errorf("executing template: %w", err)
		}
	}

	output := buf.String()

	if e.outPath != "" && e.outPath != "-" {
		if err := os.WriteFile(e.outPath, []byte(output), 0644); err != nil {
			return "", fmt.Errorf("writing output file: %w", err)
		}
	}

	return output, nil
}

func (e *Exporter) document(entries []history.Entry) Document {
	now := e.now()

	items := make([]DocumentItem, len(entries))
	for i, entry := range entries {
		items[i] = DocumentItem{
			Entry:      entry,
			SearchedAt: entry.Time().UTC(),
			Age:        entry.Age(now),
		}
	}

	return Document{
		ExportedAt: now.UTC(),
		Count:      len(items),
		Entries:    items,
	}
}

// templateFuncs are available to built-in and custom templates.
var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	// md escapes characters that would break a Markdown table cell.
	"md": func(s string) string {
		return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
	},
}

// builtinMarkdownTemplate is the default Markdown template.
const builtinMarkdownTemplate = `# Recent Searches

{{if .Entries}}| # | Query | Searched | Age |
|---|---|---|---|
{{range $i, $e := .Entries}}| {{inc $i}} | {{md $e.Query}} | {{$e.SearchedAt.Format "2006-01-02 15:04"}} | {{$e.Age}} |
{{end}}{{else}}_No recent searches._
{{end}}
---
*Exported by reelflix on {{.ExportedAt.Format "2006-01-02 15:04 MST"}}*
`

// Package artifact implements APIServer's ingestion pipeline: parsing
// multi-document artifact text, validating cross-references, and writing
// the result to the coordination KV store.
package artifact

import (
	"fmt"
	"strings"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"gopkg.in/yaml.v3"
)

// rawDoc mirrors the wire shape of one `---`-separated document before
// we know whether its kind is even valid.
type rawDoc struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec map[string]interface{} `yaml:"spec"`
}

// ParseArtifact splits body on `---` and decodes each non-blank document.
// A document with an unrecognized kind or malformed YAML produces a
// Diagnostic rather than a hard error, so Parse can report every bad
// document in the batch.
func ParseArtifact(body string) ([]models.Document, []models.Diagnostic) {
	chunks := splitDocuments(body)

	var docs []models.Document
	var diags []models.Diagnostic

	for _, c := range chunks {
		if strings.TrimSpace(c.text) == "" {
			continue
		}
		var rd rawDoc
		if err := yaml.Unmarshal([]byte(c.text), &rd); err != nil {
			diags = append(diags, models.Diagnostic{
				Kind:   models.ErrKindParse,
				Line:   c.line,
				Reason: fmt.Sprintf("malformed document: %s", err),
			})
			continue
		}
		if rd.APIVersion == "" || rd.Metadata.Name == "" {
			diags = append(diags, models.Diagnostic{
				Kind:   models.ErrKindParse,
				Line:   c.line,
				DocKind: rd.Kind,
				Name:   rd.Metadata.Name,
				Reason: "apiVersion and metadata.name are required",
			})
			continue
		}
		kind := models.Kind(rd.Kind)
		if !models.ValidKind(kind) {
			diags = append(diags, models.Diagnostic{
				Kind:   models.ErrKindParse,
				Line:   c.line,
				DocKind: rd.Kind,
				Name:   rd.Metadata.Name,
				Reason: fmt.Sprintf("unknown kind %q", rd.Kind),
			})
			continue
		}

		doc := models.Document{
			APIVersion: rd.APIVersion,
			Kind:       kind,
			Spec:       rd.Spec,
			Raw:        strings.TrimSpace(c.text),
			Line:       c.line,
		}
		doc.Metadata.Name = rd.Metadata.Name
		docs = append(docs, doc)
	}

	return docs, diags
}

type docChunk struct {
	text string
	line int
}

// splitDocuments splits on a line that is exactly "---" (optionally
// trailing whitespace), tracking the 1-based line number each chunk
// starts on for diagnostics.
func splitDocuments(body string) []docChunk {
	lines := strings.Split(body, "\n")

	var chunks []docChunk
	start := 0
	startLine := 1
	flush := func(end int) {
		text := strings.Join(lines[start:end], "\n")
		chunks = append(chunks, docChunk{text: text, line: startLine})
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			flush(i)
			start = i + 1
			startLine = i + 2
		}
	}
	flush(len(lines))

	return chunks
}

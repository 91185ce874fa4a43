package artifact_test

import (
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

const sampleScenario = `apiVersion: v1
kind: Scenario
metadata:
  name: low-speed-launch
spec:
  target: nav-package
  action: launch
`

const sampleModel = `apiVersion: v1
kind: Model
metadata:
  name: nav-model
spec:
  containers:
    - name: nav
      image: registry.local/nav:1.0
`

func TestParseArtifactSingleDoc(t *testing.T) {
	docs, diags := artifact.ParseArtifact(sampleScenario)
	if len(diags) != 0 {
		t.Fatalf("ParseArtifact() diagnostics = %v, want none", diags)
	}
	if len(docs) != 1 {
		t.Fatalf("ParseArtifact() returned %d docs, want 1", len(docs))
	}
	if docs[0].Kind != models.KindScenario {
		t.Errorf("docs[0].Kind = %q, want %q", docs[0].Kind, models.KindScenario)
	}
	if docs[0].Metadata.Name != "low-speed-launch" {
		t.Errorf("docs[0].Metadata.Name = %q, want %q", docs[0].Metadata.Name, "low-speed-launch")
	}
}

func TestParseArtifactMultiDoc(t *testing.T) {
	body := sampleScenario + "---\n" + sampleModel
	docs, diags := artifact.ParseArtifact(body)
	if len(diags) != 0 {
		t.Fatalf("ParseArtifact() diagnostics = %v, want none", diags)
	}
	if len(docs) != 2 {
		t.Fatalf("ParseArtifact() returned %d docs, want 2", len(docs))
	}
	if docs[1].Kind != models.KindModel {
		t.Errorf("docs[1].Kind = %q, want %q", docs[1].Kind, models.KindModel)
	}
}

func TestParseArtifactUnknownKind(t *testing.T) {
	body := `apiVersion: v1
kind: Bogus
metadata:
  name: x
spec: {}
`
	docs, diags := artifact.ParseArtifact(body)
	if len(docs) != 0 {
		t.Errorf("ParseArtifact() on unknown kind returned %d docs, want 0", len(docs))
	}
	if len(diags) != 1 {
		t.Fatalf("ParseArtifact() diagnostics = %d, want 1", len(diags))
	}
	if diags[0].Kind != models.ErrKindParse {
		t.Errorf("diag.Kind = %q, want %q", diags[0].Kind, models.ErrKindParse)
	}
}

func TestParseArtifactMissingRequiredFields(t *testing.T) {
	body := `kind: Scenario
metadata:
  name: x
spec: {}
`
	_, diags := artifact.ParseArtifact(body)
	if len(diags) != 1 {
		t.Fatalf("ParseArtifact() diagnostics = %d, want 1 (missing apiVersion)", len(diags))
	}
}

func TestParseArtifactMalformedYAML(t *testing.T) {
	body := "apiVersion: v1\nkind: [unterminated\n"
	_, diags := artifact.ParseArtifact(body)
	if len(diags) != 1 {
		t.Fatalf("ParseArtifact() diagnostics = %d, want 1 (malformed yaml)", len(diags))
	}
	if diags[0].Kind != models.ErrKindParse {
		t.Errorf("diag.Kind = %q, want %q", diags[0].Kind, models.ErrKindParse)
	}
}

func TestParseArtifactSkipsBlankDocuments(t *testing.T) {
	body := "---\n\n---\n" + sampleScenario
	docs, diags := artifact.ParseArtifact(body)
	if len(diags) != 0 {
		t.Fatalf("ParseArtifact() diagnostics = %v, want none", diags)
	}
	if len(docs) != 1 {
		t.Fatalf("ParseArtifact() returned %d docs, want 1 (blank chunks skipped)", len(docs))
	}
}

package artifact

import (
	"fmt"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"gopkg.in/yaml.v3"
)

// batch indexes one apply request's documents by kind+name, the way
// resolver.Resolve indexes an agent's ingredients before validating each
// one (internal/resolver/resolver.go).
type batch struct {
	scenarios map[string]models.Document
	packages  map[string]models.Document
	models    map[string]models.Document
	volumes   map[string]models.Document
	networks  map[string]models.Document
}

func newBatch(docs []models.Document) *batch {
	b := &batch{
		scenarios: map[string]models.Document{},
		packages:  map[string]models.Document{},
		models:    map[string]models.Document{},
		volumes:   map[string]models.Document{},
		networks:  map[string]models.Document{},
	}
	for _, d := range docs {
		switch d.Kind {
		case models.KindScenario:
			b.scenarios[d.Metadata.Name] = d
		case models.KindPackage:
			b.packages[d.Metadata.Name] = d
		case models.KindModel:
			b.models[d.Metadata.Name] = d
		case models.KindVolume:
			b.volumes[d.Metadata.Name] = d
		case models.KindNetwork:
			b.networks[d.Metadata.Name] = d
		}
	}
	return b
}

// duplicates returns a Diagnostic per metadata.name that appears more than
// once within a single kind in this body.
func duplicates(docs []models.Document) []models.Diagnostic {
	seen := map[string]bool{}
	var diags []models.Diagnostic
	for _, d := range docs {
		key := string(d.Kind) + "/" + d.Metadata.Name
		if seen[key] {
			diags = append(diags, models.Diagnostic{
				Kind:   models.ErrKindValidation,
				Line:   d.Line,
				DocKind: string(d.Kind),
				Name:   d.Metadata.Name,
				Reason: "conflict: duplicate metadata.name within this body",
			})
			continue
		}
		seen[key] = true
	}
	return diags
}

// existsFn looks up whether kind/name already resolves in the KV store,
// used so validation can accept a reference either to a document in the
// same batch or to one already persisted.
type existsFn func(kind models.Kind, name string) bool

// validateReferences checks every Scenario.target → Package and every
// Package.model entry → Model (and, per SPEC_FULL.md's artifact module
// supplement, every Package.model entry's volume/network → Volume/Network), each
// resolvable either within this batch or already in the KV store.
func validateReferences(b *batch, exists existsFn) []models.Diagnostic {
	var diags []models.Diagnostic

	resolves := func(kind models.Kind, name string, local map[string]models.Document) bool {
		if _, ok := local[name]; ok {
			return true
		}
		return exists(kind, name)
	}

	for _, s := range b.scenarios {
		var sc struct {
			Target string `yaml:"target"`
		}
		if err := decodeSpec(s.Spec, &sc); err != nil || sc.Target == "" {
			diags = append(diags, models.Diagnostic{
				Kind: models.ErrKindValidation, Line: s.Line, DocKind: "Scenario", Name: s.Metadata.Name,
				Reason: "scenario.spec.target is required",
			})
			continue
		}
		if !resolves(models.KindPackage, sc.Target, b.packages) {
			diags = append(diags, models.Diagnostic{
				Kind: models.ErrKindValidation, Line: s.Line, DocKind: "Scenario", Name: s.Metadata.Name,
				Reason: fmt.Sprintf("target package %q does not exist", sc.Target),
			})
		}
	}

	for _, p := range b.packages {
		var ps struct {
			Models []models.ModelRef `yaml:"models"`
		}
		if err := decodeSpec(p.Spec, &ps); err != nil {
			diags = append(diags, models.Diagnostic{
				Kind: models.ErrKindValidation, Line: p.Line, DocKind: "Package", Name: p.Metadata.Name,
				Reason: "malformed package.spec",
			})
			continue
		}
		for _, m := range ps.Models {
			if !resolves(models.KindModel, m.Name, b.models) {
				diags = append(diags, models.Diagnostic{
					Kind: models.ErrKindValidation, Line: p.Line, DocKind: "Package", Name: p.Metadata.Name,
					Reason: fmt.Sprintf("model %q does not exist", m.Name),
				})
			}
			if m.Volume != "" && !resolves(models.KindVolume, m.Volume, b.volumes) {
				diags = append(diags, models.Diagnostic{
					Kind: models.ErrKindValidation, Line: p.Line, DocKind: "Package", Name: p.Metadata.Name,
					Reason: fmt.Sprintf("volume %q does not exist", m.Volume),
				})
			}
			if m.Network != "" && !resolves(models.KindNetwork, m.Network, b.networks) {
				diags = append(diags, models.Diagnostic{
					Kind: models.ErrKindValidation, Line: p.Line, DocKind: "Package", Name: p.Metadata.Name,
					Reason: fmt.Sprintf("network %q does not exist", m.Network),
				})
			}
		}
	}

	return diags
}

func decodeSpec(spec map[string]interface{}, out interface{}) error {
	// Round-trip through YAML so map[string]interface{} decodes into the
	// typed struct the same way the original document would have.
	raw, err := yaml.Marshal(spec)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}

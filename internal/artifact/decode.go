package artifact

import (
	"fmt"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"gopkg.in/yaml.v3"
)

// DecodeScenario parses the canonical text of a single Scenario document
// (as stored under "Scenario/{name}") into a models.Scenario. Used by
// FilterGateway and ActionController, which only ever read one artifact
// kind's text back out of KV and need it fully typed.
func DecodeScenario(raw string) (*models.Scenario, error) {
	var rd rawDoc
	if err := yaml.Unmarshal([]byte(raw), &rd); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	var s models.Scenario
	if err := decodeSpec(rd.Spec, &s); err != nil {
		return nil, fmt.Errorf("decode scenario spec: %w", err)
	}
	s.Name = rd.Metadata.Name
	return &s, nil
}

// DecodePackage parses the canonical text of a single Package document.
func DecodePackage(raw string) (*models.Package, error) {
	var rd rawDoc
	if err := yaml.Unmarshal([]byte(raw), &rd); err != nil {
		return nil, fmt.Errorf("decode package: %w", err)
	}
	var p models.Package
	if err := decodeSpec(rd.Spec, &p); err != nil {
		return nil, fmt.Errorf("decode package spec: %w", err)
	}
	p.Name = rd.Metadata.Name
	return &p, nil
}

// DecodeModel parses the canonical text of a single Model document.
func DecodeModel(raw string) (*models.Model, error) {
	var rd rawDoc
	if err := yaml.Unmarshal([]byte(raw), &rd); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	var m models.Model
	if err := decodeSpec(rd.Spec, &m); err != nil {
		return nil, fmt.Errorf("decode model spec: %w", err)
	}
	m.Name = rd.Metadata.Name
	return &m, nil
}

// EncodeModelDoc re-marshals originalRaw's document with model's fields
// written back into its spec, preserving apiVersion/kind/metadata exactly
// as submitted. Used by ActionController's rollback to persist a reverted
// container image without disturbing the rest of the document.
func EncodeModelDoc(originalRaw string, model *models.Model) (string, error) {
	var rd rawDoc
	if err := yaml.Unmarshal([]byte(originalRaw), &rd); err != nil {
		return "", fmt.Errorf("encode model doc: %w", err)
	}
	specBytes, err := yaml.Marshal(model)
	if err != nil {
		return "", err
	}
	var spec map[string]interface{}
	if err := yaml.Unmarshal(specBytes, &spec); err != nil {
		return "", err
	}
	rd.Spec = spec

	out, err := yaml.Marshal(rd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

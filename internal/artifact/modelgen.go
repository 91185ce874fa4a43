package artifact

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// modelGenKeyPrefix namespaces the auxiliary rollback bookkeeping kept
// alongside a Model's declared spec.
const modelGenKeyPrefix = "modelgen/"

// ModelRuntime is the bounded-history record ActionController's rollback
// action consults; it tracks the primary container superseded by each
// update without mutating the operator-submitted Model document itself.
type ModelRuntime struct {
	Generation int               `json:"generation"`
	History    []models.Container `json:"history"` // History[0] is the most recently superseded primary container
}

const maxModelHistory = 5

func modelGenKey(name string) string {
	return modelGenKeyPrefix + name
}

// LoadModelRuntime reads name's rollback bookkeeping record, returning a
// zero-value ModelRuntime (generation 0, no history) if none exists yet.
func LoadModelRuntime(ctx context.Context, kv contracts.KVStore, name string) (ModelRuntime, error) {
	raw, _, err := kv.Get(ctx, modelGenKey(name))
	if err != nil {
		return ModelRuntime{}, nil
	}
	var rt ModelRuntime
	if err := json.Unmarshal(raw, &rt); err != nil {
		return ModelRuntime{}, err
	}
	return rt, nil
}

// SaveModelRuntime persists name's rollback bookkeeping record.
func SaveModelRuntime(ctx context.Context, kv contracts.KVStore, name string, rt ModelRuntime) error {
	raw, err := json.Marshal(rt)
	if err != nil {
		return err
	}
	return kv.Put(ctx, modelGenKey(name), raw)
}

// recordModelGeneration bumps name's generation and pushes its prior
// primary container onto History whenever a re-applied Model document
// changes containers.
func recordModelGeneration(ctx context.Context, kv contracts.KVStore, name string, existingRaw, newRaw string) error {
	oldModel, err := DecodeModel(existingRaw)
	if err != nil {
		return err
	}
	newModel, err := DecodeModel(newRaw)
	if err != nil {
		return err
	}
	if reflect.DeepEqual(oldModel.Containers, newModel.Containers) {
		return nil
	}

	rt, err := LoadModelRuntime(ctx, kv, name)
	if err != nil {
		return err
	}
	rt.Generation++
	rt.History = append([]models.Container{containerSnapshot(oldModel)}, rt.History...)
	if len(rt.History) > maxModelHistory {
		rt.History = rt.History[:maxModelHistory]
	}
	return SaveModelRuntime(ctx, kv, name, rt)
}

// containerSnapshot captures the primary container's image for history;
// orchestrator-managed rollback only ever swaps the first container's
// image, matching the single-image-per-Model case the spec's examples use.
func containerSnapshot(m *models.Model) models.Container {
	if len(m.Containers) == 0 {
		return models.Container{}
	}
	return m.Containers[0]
}

package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/rs/zerolog/log"
)

// ScenarioNotifier is the seam APIServer uses to dispatch
// scenario.apply(name) / scenario.withdraw(name) to FilterGateway.
// Kept as a narrow interface so the service package doesn't need to
// import the gRPC client directly.
type ScenarioNotifier interface {
	ApplyScenario(ctx context.Context, name string) error
	WithdrawScenario(ctx context.Context, name string) error
}

// Service implements the APIServer ingestion operations: apply, withdraw,
// list, get.
type Service struct {
	kv       contracts.KVStore
	notifier ScenarioNotifier
}

// NewService creates an artifact ingestion service over kv, dispatching
// scenario lifecycle RPCs through notifier.
func NewService(kv contracts.KVStore, notifier ScenarioNotifier) *Service {
	return &Service{kv: kv, notifier: notifier}
}

// Diagnostics aggregates parse/validation failures from one apply call
// into a single error, following the project's small-typed-error style
// (see ErrNotFound).
type Diagnostics struct {
	Items []models.Diagnostic
}

func (d *Diagnostics) Error() string {
	return fmt.Sprintf("%d diagnostic(s), first: %s", len(d.Items), d.Items[0].Reason)
}

func kvKey(kind models.Kind, name string) string {
	return string(kind) + "/" + name
}

func (s *Service) exists(ctx context.Context, kind models.Kind, name string) bool {
	_, _, err := s.kv.Get(ctx, kvKey(kind, name))
	return err == nil
}

// Apply parses body, validates all cross-references, writes the batch to
// KV, and notifies FilterGateway of every submitted Scenario. Parse and
// validation failures abort the whole apply atomically;
// FilterGateway notification failures do not roll back the KV writes.
// A failed notification is logged and not retried: nothing re-sends it
// later, so the Scenario has no filter until it is applied again.
func (s *Service) Apply(ctx context.Context, body string) (models.ApplyResult, error) {
	docs, diags := ParseArtifact(body)
	diags = append(diags, duplicates(docs)...)

	b := newBatch(docs)
	existsFn := func(kind models.Kind, name string) bool { return s.exists(ctx, kind, name) }
	diags = append(diags, validateReferences(b, existsFn)...)

	if len(diags) > 0 {
		return models.ApplyResult{Status: "error", Diagnostics: diags}, &Diagnostics{Items: diags}
	}

	results := make([]models.DocResult, 0, len(docs))
	for _, d := range docs {
		key := kvKey(d.Kind, d.Metadata.Name)
		existing, _, err := s.kv.Get(ctx, key)
		status := "created"
		if err == nil {
			status = "updated"
		}

		if d.Kind == models.KindModel && status == "updated" {
			if err := recordModelGeneration(ctx, s.kv, d.Metadata.Name, string(existing), d.Raw); err != nil {
				return models.ApplyResult{Status: "error"}, fmt.Errorf("model generation bookkeeping: %w", err)
			}
		}

		if status == "created" {
			// CAS create: CreateOnly only succeeds if no concurrent Apply
			// won the race since our Get above. On ErrAlreadyExists, fall
			// back to a plain update — the loser of the create race still
			// converges on the latest submitted document.
			if err := s.kv.CreateOnly(ctx, key, []byte(d.Raw)); err != nil {
				var alreadyExists *contracts.ErrAlreadyExists
				if !errors.As(err, &alreadyExists) {
					return models.ApplyResult{Status: "error"}, fmt.Errorf("kv unavailable: %w", err)
				}
				if putErr := s.kv.Put(ctx, key, []byte(d.Raw)); putErr != nil {
					return models.ApplyResult{Status: "error"}, fmt.Errorf("kv unavailable: %w", putErr)
				}
				status = "updated"
			}
		} else if putErr := s.kv.Put(ctx, key, []byte(d.Raw)); putErr != nil {
			return models.ApplyResult{Status: "error"}, fmt.Errorf("kv unavailable: %w", putErr)
		}
		results = append(results, models.DocResult{Kind: d.Kind, Name: d.Metadata.Name, Status: status})
	}

	// Step 4: dispatch scenario.apply(name) for every submitted Scenario.
	// Failure here is logged, not returned: KV writes already committed.
	for _, d := range docs {
		if d.Kind != models.KindScenario {
			continue
		}
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.ApplyScenario(ctx, d.Metadata.Name); err != nil {
			log.Warn().Err(err).Str("scenario", d.Metadata.Name).
				Msg("scenario.apply notification failed, not retried")
		}
	}

	return models.ApplyResult{Status: "ok", Results: results}, nil
}

// Withdraw deletes the named Scenario artifacts from KV. Dependent
// Package/Model documents are NOT deleted — they may be shared by other
// scenarios.
func (s *Service) Withdraw(ctx context.Context, names []string) (models.ApplyResult, error) {
	results := make([]models.DocResult, 0, len(names))
	for _, name := range names {
		key := kvKey(models.KindScenario, name)
		if _, _, err := s.kv.Get(ctx, key); err != nil {
			results = append(results, models.DocResult{Kind: models.KindScenario, Name: name, Status: "error", Reason: "not found"})
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return models.ApplyResult{Status: "error"}, fmt.Errorf("kv unavailable: %w", err)
		}
		results = append(results, models.DocResult{Kind: models.KindScenario, Name: name, Status: "deleted"})

		if s.notifier != nil {
			if err := s.notifier.WithdrawScenario(ctx, name); err != nil {
				log.Warn().Err(err).Str("scenario", name).Msg("scenario.withdraw notification failed")
			}
		}
	}
	return models.ApplyResult{Status: "ok", Results: results}, nil
}

// List returns every stored document of kind, sorted by name.
func (s *Service) List(ctx context.Context, kind models.Kind) ([]models.Document, error) {
	entries, err := s.kv.PrefixScan(ctx, string(kind)+"/")
	if err != nil {
		return nil, err
	}
	// Keys are "{Kind}/{name}", so ordering by key orders by name.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	docs := make([]models.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, models.Document{Kind: kind, Raw: string(e.Value)})
	}
	return docs, nil
}

// Get returns the canonical text for kind/name.
func (s *Service) Get(ctx context.Context, kind models.Kind, name string) (string, error) {
	v, _, err := s.kv.Get(ctx, kvKey(kind, name))
	if err != nil {
		var nf *contracts.ErrNotFound
		if errors.As(err, &nf) {
			return "", fmt.Errorf("%s/%s: %w", kind, name, err)
		}
		return "", err
	}
	return string(v), nil
}

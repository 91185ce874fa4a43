// Package apiserver implements APIServer's REST ingress: parse multi-doc artifact text, validate, write to KV, dispatch
// scenario lifecycle to FilterGateway, and serve back stored artifact
// text, using a chi-router + Handlers split.
package apiserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// Handlers implements the artifact REST surface over an artifact.Service.
type Handlers struct {
	svc *artifact.Service
}

func NewHandlers(svc *artifact.Service) *Handlers {
	return &Handlers{svc: svc}
}

// PostArtifact implements `POST /api/artifact`: body is raw
// multi-doc artifact text. 200 on full success; 400 with structured
// diagnostics on parse/validation failure; 503 on KV transient error.
func (h *Handlers) PostArtifact(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := h.svc.Apply(r.Context(), string(body))
	if err != nil {
		var diags *artifact.Diagnostics
		if errors.As(err, &diags) {
			respondJSON(w, http.StatusBadRequest, result)
			return
		}
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// deleteArtifactRequest is the structured form of `DELETE /api/artifact`'s
// body: the names of the Scenarios to withdraw. Only Scenarios can be
// named; the body carries no kind field and no artifact text.
type deleteArtifactRequest struct {
	Scenarios []string `json:"scenarios"`
}

// DeleteArtifact implements `DELETE /api/artifact`.
func (h *Handlers) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	var req deleteArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Scenarios) == 0 {
		respondError(w, http.StatusBadRequest, "scenarios must not be empty")
		return
	}

	result, err := h.svc.Withdraw(r.Context(), req.Scenarios)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetArtifact implements `GET /api/artifact?kind=…&name=…`.
func (h *Handlers) GetArtifact(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.URL.Query().Get("kind"))
	name := r.URL.Query().Get("name")

	if name == "" {
		docs, err := h.svc.List(r.Context(), kind)
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, docs)
		return
	}

	raw, err := h.svc.Get(r.Context(), kind, name)
	if err != nil {
		var nf *contracts.ErrNotFound
		if errors.As(err, &nf) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(raw))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

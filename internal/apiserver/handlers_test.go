package apiserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/apiserver"
	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

type noopNotifier struct{}

func (noopNotifier) ApplyScenario(context.Context, string) error    { return nil }
func (noopNotifier) WithdrawScenario(context.Context, string) error { return nil }

const handlerTestModel = `apiVersion: v1
kind: Model
metadata:
  name: nav-model
spec:
  containers:
    - name: nav
      image: registry.local/nav:1.0
`

const handlerTestPackage = `apiVersion: v1
kind: Package
metadata:
  name: nav-package
spec:
  models:
    - name: nav-model
      node: host
`

const handlerTestScenario = `apiVersion: v1
kind: Scenario
metadata:
  name: low-speed-launch
spec:
  action: start
  target: nav-package
`

func newTestHandlers() *apiserver.Handlers {
	store := kv.NewMemoryStore()
	svc := artifact.NewService(store, noopNotifier{})
	return apiserver.NewHandlers(svc)
}

func TestPostArtifactSuccess(t *testing.T) {
	h := newTestHandlers()
	body := handlerTestModel + "---\n" + handlerTestPackage + "---\n" + handlerTestScenario
	req := httptest.NewRequest(http.MethodPost, "/api/artifact", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.PostArtifact(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("PostArtifact() status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var result models.ApplyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("result.Status = %q, want ok", result.Status)
	}
}

func TestPostArtifactDiagnosticsReturns400(t *testing.T) {
	h := newTestHandlers()
	req := httptest.NewRequest(http.MethodPost, "/api/artifact", strings.NewReader(handlerTestScenario))
	w := httptest.NewRecorder()

	h.PostArtifact(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("PostArtifact() status = %d, want 400 for an unresolved target reference", w.Code)
	}
}

func TestDeleteArtifactEmptyScenariosReturns400(t *testing.T) {
	h := newTestHandlers()
	req := httptest.NewRequest(http.MethodDelete, "/api/artifact", strings.NewReader(`{"scenarios":[]}`))
	w := httptest.NewRecorder()

	h.DeleteArtifact(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("DeleteArtifact() status = %d, want 400 for an empty scenarios list", w.Code)
	}
}

func TestDeleteArtifactSuccess(t *testing.T) {
	h := newTestHandlers()
	body := handlerTestModel + "---\n" + handlerTestPackage + "---\n" + handlerTestScenario
	postReq := httptest.NewRequest(http.MethodPost, "/api/artifact", strings.NewReader(body))
	h.PostArtifact(httptest.NewRecorder(), postReq)

	delReq := httptest.NewRequest(http.MethodDelete, "/api/artifact", strings.NewReader(`{"scenarios":["low-speed-launch"]}`))
	w := httptest.NewRecorder()
	h.DeleteArtifact(w, delReq)

	if w.Code != http.StatusOK {
		t.Fatalf("DeleteArtifact() status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	h := newTestHandlers()
	req := httptest.NewRequest(http.MethodGet, "/api/artifact?kind=Scenario&name=nope", nil)
	w := httptest.NewRecorder()

	h.GetArtifact(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("GetArtifact() status = %d, want 404", w.Code)
	}
}

func TestGetArtifactByNameReturnsRawText(t *testing.T) {
	h := newTestHandlers()
	postReq := httptest.NewRequest(http.MethodPost, "/api/artifact", strings.NewReader(handlerTestModel))
	h.PostArtifact(httptest.NewRecorder(), postReq)

	req := httptest.NewRequest(http.MethodGet, "/api/artifact?kind=Model&name=nav-model", nil)
	w := httptest.NewRecorder()
	h.GetArtifact(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GetArtifact() status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "nav-model") {
		t.Error("GetArtifact() body should contain the stored artifact text")
	}
}

func TestGetArtifactListByKind(t *testing.T) {
	h := newTestHandlers()
	postReq := httptest.NewRequest(http.MethodPost, "/api/artifact", strings.NewReader(handlerTestModel))
	h.PostArtifact(httptest.NewRecorder(), postReq)

	req := httptest.NewRequest(http.MethodGet, "/api/artifact?kind=Model", nil)
	w := httptest.NewRecorder()
	h.GetArtifact(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GetArtifact() status = %d, want 200", w.Code)
	}
	var docs []models.Document
	if err := json.Unmarshal(w.Body.Bytes(), &docs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("docs = %d, want 1", len(docs))
	}
}

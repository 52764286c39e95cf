package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/audit"
	"github.com/autocomply/casework/pkg/config"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/recompute"
	"github.com/autocomply/casework/pkg/store"
	"github.com/autocomply/casework/pkg/telemetry/health"
	"github.com/autocomply/casework/pkg/workflow"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	s, err := store.New(&store.Config{Path: filepath.Join(dir, "casework.db"), WALMode: true, BusyTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	chain, err := intelligence.NewChainStore(&intelligence.ChainConfig{Path: filepath.Join(dir, "chain.db"), BusyTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewChainStore: %v", err)
	}
	t.Cleanup(func() { chain.Close() })

	repo := intelligence.NewRepository(s, chain)
	hook := recompute.NewHook(repo)
	wf := workflow.New(s, hook, filepath.Join(dir, "uploads"))
	exporter := audit.New(s, chain, audit.Config{SigningKey: "test-signing-key", EvidenceRetentionDays: 30, PayloadRetentionDays: 90})
	checker := health.New(time.Second)

	cfg := &config.Config{}
	cfg.Server.CORS = config.CORSConfig{Enabled: false}
	cfg.Intelligence.ThrottleSeconds = recompute.DefaultThrottleSeconds

	return NewServer(cfg, Deps{
		Workflow: wf,
		Hook:     hook,
		Chain:    chain,
		Exporter: exporter,
		Health:   checker,
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set(actor.RoleHeader, role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthzRequiresNoActor(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCaseRoutesRequireActorHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/cases", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /cases without role header = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateSubmissionThenGetCase(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	createReq := map[string]any{
		"decision_type": "csf",
		"form_data":     map[string]any{"name": "Jane Doe"},
		"submitted_by":  "s-1",
		"account_id":    "acct-1",
		"location_id":   "loc-1",
	}
	rec := doRequest(t, h, http.MethodPost, "/submissions", "submitter", createReq)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /submissions = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}

	var created createSubmissionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	caseMap, ok := created.Case.(map[string]any)
	if !ok {
		t.Fatalf("case field is not an object: %#v", created.Case)
	}
	caseID, _ := caseMap["id"].(string)
	if caseID == "" {
		t.Fatalf("created case has no id: %#v", caseMap)
	}

	rec = doRequest(t, h, http.MethodGet, "/cases/"+caseID, "verifier", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /cases/{id} = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestPatchCaseUnknownIDReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodPatch, "/cases/does-not-exist", "verifier", map[string]any{
		"note": "checking in",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("PATCH /cases/{unknown} = %d, want 404; body=%s", rec.Code, rec.Body.String())
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Kind != "not_found" {
		t.Errorf("error.kind = %q, want not_found", body.Error.Kind)
	}
}

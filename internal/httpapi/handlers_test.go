package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/DoukyDPA/mission-ia/internal/auth"
	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/forms"
	"github.com/DoukyDPA/mission-ia/internal/identity"
	"github.com/DoukyDPA/mission-ia/internal/storage"
	"github.com/DoukyDPA/mission-ia/internal/store/memory"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("MISSIONIA_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	st := memory.Seeded()
	files := storage.NewLocal(t.TempDir(), "/files")
	api := New(Options{
		Store:      st,
		Files:      files,
		Identity:   identity.NewService(st, identity.WithPreviewMode(true)),
		Forms:      forms.NewProcessor(st, files),
		Version:    "test",
		FileDir:    files.Dir(),
		RateBurst:  1000,
		RatePerSec: 1000,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

// signIn logs a demo account in and returns its bearer header.
func (c *apiClient) signIn(email string) map[string]string {
	c.t.Helper()
	resp := c.post("/v1/auth/login", map[string]any{"email": email, "password": "demo"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	var session identity.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		c.t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return map[string]string{"Authorization": "Bearer " + session.Token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestLoginAndSessionRestore(t *testing.T) {
	c := newTestAPI(t)

	headers := c.signIn("jean.dupont@ml-lyon.fr")

	resp := c.get("/v1/auth/session", nil, headers)
	session := decode[identity.Session](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status: %d", resp.StatusCode)
	}
	if session.User.Name != "Jean Dupont" || session.User.StructureName != "Mission Locale de Lyon" {
		t.Fatalf("unexpected session user: %+v", session.User)
	}

	resp = c.post("/v1/auth/login", map[string]any{"email": "nobody@ml-lyon.fr", "password": "x"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown email status: %d", resp.StatusCode)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/v1/prompts", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = c.get("/healthz", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz must stay public: %d", resp.StatusCode)
	}
}

func TestRegisterFlow(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/v1/auth/register", map[string]any{
		"email":     "Nouvelle@ML-Paris.fr",
		"password":  "secret123",
		"full_name": "Nouvelle Conseillère",
	}, nil)
	session := decode[identity.Session](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	if session.User.StructureID != memory.StructureParisID {
		t.Fatalf("structure not bound from domain: %+v", session.User)
	}

	resp = c.post("/v1/auth/register", map[string]any{
		"email":    "intrus@gmail.com",
		"password": "secret123",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unknown domain status: %d", resp.StatusCode)
	}
}

func TestPromptVisibilityAcrossStructures(t *testing.T) {
	c := newTestAPI(t)

	// Jean (ML Lyon) sees the network prompts plus his own local one.
	jean := c.signIn("jean.dupont@ml-lyon.fr")
	resp := c.get("/v1/prompts", nil, jean)
	lyon := decode[listPromptsResponse](t, resp)
	if !hasPrompt(lyon.Items, memory.PromptSyntheseID) {
		t.Fatalf("jean should see his local prompt: %+v", promptIDs(lyon.Items))
	}
	if !hasPrompt(lyon.Items, memory.PromptAppelProjetID) {
		t.Fatalf("jean should see network prompts: %+v", promptIDs(lyon.Items))
	}
	for _, p := range lyon.Items {
		if p.ID == memory.PromptSyntheseID && p.LikesCount != 12 {
			t.Fatalf("seeded likes count missing: %+v", p)
		}
	}

	// Sarah (ML Paris) must not see Lyon's local prompt.
	sarah := c.signIn("sarah.martin@ml-paris.fr")
	resp = c.get("/v1/prompts", nil, sarah)
	paris := decode[listPromptsResponse](t, resp)
	if hasPrompt(paris.Items, memory.PromptSyntheseID) {
		t.Fatalf("sarah must not see lyon-local prompts: %+v", promptIDs(paris.Items))
	}

	// Admin sees everything.
	admin := c.signIn("formateur@ia.fr")
	resp = c.get("/v1/prompts", nil, admin)
	all := decode[listPromptsResponse](t, resp)
	if !hasPrompt(all.Items, memory.PromptSyntheseID) {
		t.Fatalf("admin sees all prompts: %+v", promptIDs(all.Items))
	}

	// Direct fetch of a hidden prompt reads as absent.
	resp = c.get("/v1/prompts/"+memory.PromptSyntheseID, nil, sarah)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("hidden prompt must 404, got %d", resp.StatusCode)
	}
}

func TestPromptSearchAndCategory(t *testing.T) {
	c := newTestAPI(t)
	jean := c.signIn("jean.dupont@ml-lyon.fr")

	resp := c.get("/v1/prompts", url.Values{"q": []string{"entretien"}}, jean)
	found := decode[listPromptsResponse](t, resp)
	for _, p := range found.Items {
		if !content.MatchesQuery(p, "entretien") {
			t.Fatalf("query filter leaked %q", p.ID)
		}
	}

	resp = c.get("/v1/prompts", url.Values{"category": []string{content.CategoryAll}}, jean)
	unfiltered := decode[listPromptsResponse](t, resp)
	resp = c.get("/v1/prompts", nil, jean)
	baseline := decode[listPromptsResponse](t, resp)
	if len(unfiltered.Items) != len(baseline.Items) {
		t.Fatalf("category %q must not filter: %d != %d", content.CategoryAll, len(unfiltered.Items), len(baseline.Items))
	}
}

func TestPromptCreateForkDelete(t *testing.T) {
	c := newTestAPI(t)
	jean := c.signIn("jean.dupont@ml-lyon.fr")
	admin := c.signIn("formateur@ia.fr")

	resp := c.post("/v1/prompts", map[string]any{
		"title":    "Préparer un CV",
		"content":  "Rédige un CV pour un jeune sans expérience...",
		"category": "Emploi",
		"scope":    "network",
	}, jean)
	created := decode[content.Prompt](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	if created.AuthorName != "Jean Dupont" || created.Avatar != "JE" {
		t.Fatalf("author not stamped: %+v", created)
	}

	// Sarah forks the network prompt; the copy is hers.
	sarah := c.signIn("sarah.martin@ml-paris.fr")
	resp = c.post("/v1/prompts/"+created.ID+"/fork", map[string]any{
		"content": "Variante parisienne",
	}, sarah)
	fork := decode[content.Prompt](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("fork status: %d", resp.StatusCode)
	}
	if !fork.IsFork || fork.ParentID != created.ID || fork.StructureID != memory.StructureParisID {
		t.Fatalf("bad fork: %+v", fork)
	}
	if fork.ParentAuthor != "Jean Dupont" {
		t.Fatalf("fork attribution missing: %+v", fork)
	}

	// Deletion is admin-only: neither Sarah nor the author himself.
	resp = c.do(http.MethodDelete, "/v1/prompts/"+created.ID, nil, sarah)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign delete status: %d", resp.StatusCode)
	}
	resp = c.do(http.MethodDelete, "/v1/prompts/"+created.ID, nil, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner delete status: %d", resp.StatusCode)
	}

	// Admin can; the fork survives with a dangling parent_id.
	resp = c.do(http.MethodDelete, "/v1/prompts/"+created.ID, nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete status: %d", resp.StatusCode)
	}
	resp = c.get("/v1/prompts/"+fork.ID, nil, sarah)
	orphan := decode[content.Prompt](t, resp)
	if orphan.ParentID != created.ID || orphan.ParentAuthor != "Jean Dupont" {
		t.Fatalf("fork must keep its lineage after parent deletion: %+v", orphan)
	}
}

func TestResourceVisibilityAndGrouping(t *testing.T) {
	c := newTestAPI(t)

	// Sarah (ML Paris) must not see the Lyon-targeted procedure.
	sarah := c.signIn("sarah.martin@ml-paris.fr")
	resp := c.get("/v1/resources", nil, sarah)
	paris := decode[listResourcesResponse](t, resp)
	for _, res := range paris.Items {
		if res.ID == memory.ResourceProcedureLyonID {
			t.Fatalf("lyon-local resource leaked to paris")
		}
	}

	// Jean (ML Lyon) sees it, grouped under articles.
	jean := c.signIn("jean.dupont@ml-lyon.fr")
	resp = c.get("/v1/resources", nil, jean)
	lyon := decode[listResourcesResponse](t, resp)
	found := false
	for _, res := range lyon.Groups["articles"] {
		if res.ID == memory.ResourceProcedureLyonID {
			found = true
		}
	}
	if !found {
		t.Fatalf("text resource must land in the articles group: %+v", lyon.Groups)
	}
}

func TestResourceLinkCreate(t *testing.T) {
	c := newTestAPI(t)
	jean := c.signIn("jean.dupont@ml-lyon.fr")

	resp := c.post("/v1/resources", map[string]any{
		"title":     "Atelier IA en ligne",
		"file_type": "link",
		"url":       "https://exemple.org/atelier",
	}, jean)
	created := decode[content.Resource](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	if created.FileURL != "https://exemple.org/atelier" || created.UploadedBy == "" {
		t.Fatalf("bad resource: %+v", created)
	}
}

func TestAdminOnlySurfaces(t *testing.T) {
	c := newTestAPI(t)
	jean := c.signIn("jean.dupont@ml-lyon.fr")
	admin := c.signIn("formateur@ia.fr")

	// Members cannot manage users or domains.
	resp := c.get("/v1/users", nil, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member /v1/users status: %d", resp.StatusCode)
	}
	resp = c.post("/v1/domains", map[string]any{"domain": "ml-nantes.fr"}, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member /v1/domains status: %d", resp.StatusCode)
	}
	resp = c.post("/v1/structures", map[string]any{"name": "ML Nantes", "city": "Nantes"}, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member create structure status: %d", resp.StatusCode)
	}

	// Admin manages the allow-list; entries come back normalized.
	resp = c.post("/v1/domains", map[string]any{"domain": "@ML-Nantes.FR"}, admin)
	entry := decode[content.AllowedDomain](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create domain status: %d", resp.StatusCode)
	}
	if entry.Domain != "ml-nantes.fr" {
		t.Fatalf("domain not normalized: %+v", entry)
	}

	// Everyone signed in sees the structure directory.
	resp = c.get("/v1/structures", nil, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member structures status: %d", resp.StatusCode)
	}
}

func TestAdminEditsUserRole(t *testing.T) {
	c := newTestAPI(t)
	admin := c.signIn("formateur@ia.fr")

	resp := c.do(http.MethodPatch, "/v1/users/"+memory.ProfileJeanID, map[string]any{
		"role": "Directrice",
	}, admin)
	edited := decode[userView](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status: %d", resp.StatusCode)
	}
	if edited.Role != "Directrice" {
		t.Fatalf("role not updated: %+v", edited)
	}
}

func TestAdminInvitesUser(t *testing.T) {
	c := newTestAPI(t)
	admin := c.signIn("formateur@ia.fr")

	resp := c.post("/v1/users/invite", map[string]any{"email": "nouvelle@ml-lyon.fr"}, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("invite status: %d", resp.StatusCode)
	}

	resp = c.post("/v1/users/invite", map[string]any{"email": "pas-un-email"}, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad address invite status: %d", resp.StatusCode)
	}
}

func TestAdminCreatesStructure(t *testing.T) {
	c := newTestAPI(t)
	admin := c.signIn("formateur@ia.fr")

	resp := c.post("/v1/structures", map[string]any{
		"name": "Mission Locale de Bordeaux",
		"city": "Bordeaux",
	}, admin)
	created := decode[content.Structure](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	if created.ID == "" || created.Name != "Mission Locale de Bordeaux" || created.City != "Bordeaux" {
		t.Fatalf("unexpected structure: %+v", created)
	}

	resp = c.get("/v1/structures", nil, admin)
	listing := decode[struct {
		Items []content.Structure `json:"items"`
	}](t, resp)
	found := false
	for _, s := range listing.Items {
		if s.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("new structure missing from directory: %v", listing.Items)
	}
}

func TestLogoutThenSessionRequiresToken(t *testing.T) {
	c := newTestAPI(t)
	jean := c.signIn("jean.dupont@ml-lyon.fr")

	resp := c.post("/v1/auth/logout", nil, jean)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}

	// The client discards its token on logout; a restore without one fails.
	resp = c.get("/v1/auth/session", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("session without token status: %d", resp.StatusCode)
	}
}

func hasPrompt(items []content.Prompt, id string) bool {
	for _, p := range items {
		if p.ID == id {
			return true
		}
	}
	return false
}

func promptIDs(items []content.Prompt) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

// Package httpapi is the HTTP layer: routing, authentication, request
// plumbing and the JSON handlers for every collection.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/forms"
	"github.com/DoukyDPA/mission-ia/internal/identity"
	"github.com/DoukyDPA/mission-ia/internal/obs"
	"github.com/DoukyDPA/mission-ia/internal/storage"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

// ReadyProbe reports backend readiness; a nil DB always passes, which
// is the preview-mode case.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	store      store.Store
	files      storage.Store
	identity   *identity.Service
	forms      *forms.Processor
	readyProbe ReadyProbe
	version    string
	rateBurst  int
	ratePerSec int
}

// Options carries the collaborators the API serves.
type Options struct {
	Store    store.Store
	Files    storage.Store
	Identity *identity.Service
	Forms    *forms.Processor
	Ready    ReadyProbe
	Version  string

	// FileDir, when set, serves stored objects from disk under /files/.
	FileDir string

	// Per-IP rate limiting; zero values pick sane defaults.
	RateBurst  int
	RatePerSec int
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		store:      opts.Store,
		files:      opts.Files,
		identity:   opts.Identity,
		forms:      opts.Forms,
		readyProbe: opts.Ready,
		version:    opts.Version,
		rateBurst:  opts.RateBurst,
		ratePerSec: opts.RatePerSec,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 50
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 25
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// sessions
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/session", a.handleSession)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)

	// content
	a.mux.HandleFunc("/v1/prompts", a.handlePromptsCollection)
	a.mux.HandleFunc("/v1/prompts/", a.handlePromptResource)
	a.mux.HandleFunc("/v1/resources", a.handleResourcesCollection)
	a.mux.HandleFunc("/v1/resources/", a.handleResourceResource)

	// administration
	a.mux.HandleFunc("/v1/structures", a.handleStructuresCollection)
	a.mux.HandleFunc("/v1/structures/", a.handleStructureResource)
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/domains", a.handleDomainsCollection)
	a.mux.HandleFunc("/v1/domains/", a.handleDomainResource)

	// stored files
	if opts.FileDir != "" {
		a.mux.Handle("/files/", http.StripPrefix("/files/",
			http.FileServer(http.Dir(opts.FileDir))))
	}

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.withAuth(a.mux)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = MaxBodyBytes(h, storage.MaxUploadBytes+1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "missionia-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "missionia-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

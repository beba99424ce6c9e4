package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/forms"
)

type listPromptsResponse struct {
	Items []content.Prompt `json:"items"`
	AsOf  time.Time        `json:"as_of"`
}

func (a *API) handlePromptsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listPrompts(w, r)
	case http.MethodPost:
		a.submitPrompt(w, r, forms.PromptForm{Mode: forms.ModeCreate})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handlePromptResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/prompts/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/fork") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/fork"), "/")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "prompt not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.submitPrompt(w, r, forms.PromptForm{Mode: forms.ModeFork, ParentID: id})
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getPrompt(w, r, path)
	case http.MethodPut, http.MethodPatch:
		a.submitPrompt(w, r, forms.PromptForm{Mode: forms.ModeEdit, ID: path})
	case http.MethodDelete:
		a.deletePrompt(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// listPrompts returns what the viewer may see, narrowed by the optional
// q and category parameters.
func (a *API) listPrompts(w http.ResponseWriter, r *http.Request) {
	all, err := a.store.Prompts(r.Context()).List(r.Context())
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	items := content.FilterPrompts(all, viewer(r), q, category)
	writeJSON(w, http.StatusOK, listPromptsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) getPrompt(w http.ResponseWriter, r *http.Request, id string) {
	prompt, err := a.store.Prompts(r.Context()).Find(r.Context(), id)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	if !content.PromptVisible(*prompt, viewer(r)) {
		// Hidden content reads as absent, not forbidden.
		writeError(w, r, http.StatusNotFound, content.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// submitPrompt funnels create, edit and fork through the form processor.
// The route decides the mode; the body fills the rest.
func (a *API) submitPrompt(w http.ResponseWriter, r *http.Request, seed forms.PromptForm) {
	var form forms.PromptForm
	if err := decodeJSON(w, r, &form); err != nil {
		if seed.Mode != forms.ModeFork {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		// A fork with no body copies the parent verbatim.
		form = forms.PromptForm{}
	}
	form.Mode = seed.Mode
	if seed.ID != "" {
		form.ID = seed.ID
	}
	if seed.ParentID != "" {
		form.ParentID = seed.ParentID
	}

	prompt, err := a.forms.SubmitPrompt(r.Context(), viewer(r), form)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	code := http.StatusCreated
	if form.Mode == forms.ModeEdit {
		code = http.StatusOK
	}
	writeJSON(w, code, prompt)
}

// deletePrompt removes a prompt. Deletion is an admin action; authors
// edit or hide their own prompts instead. Forks of the deleted prompt
// survive with a dangling parent_id.
func (a *API) deletePrompt(w http.ResponseWriter, r *http.Request, id string) {
	if !a.requireAdmin(w, r) {
		return
	}
	if err := a.store.Prompts(r.Context()).Delete(r.Context(), id); err != nil {
		handleContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

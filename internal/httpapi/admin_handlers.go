package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/forms"
	"github.com/DoukyDPA/mission-ia/internal/storage"
)

// --- structures ---

func (a *API) handleStructuresCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listStructures(w, r)
	case http.MethodPost:
		if !a.requireAdmin(w, r) {
			return
		}
		a.submitStructure(w, r, forms.StructureForm{Mode: forms.ModeCreate})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleStructureResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/structures/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getStructure(w, r, id)
	case http.MethodPut, http.MethodPatch:
		if !a.requireAdmin(w, r) {
			return
		}
		a.submitStructure(w, r, forms.StructureForm{Mode: forms.ModeEdit, ID: id})
	case http.MethodDelete:
		if !a.requireAdmin(w, r) {
			return
		}
		a.deleteStructure(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// Every signed-in user sees the directory; it feeds the structure
// pickers in the forms.
func (a *API) listStructures(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.Structures(r.Context()).List(r.Context())
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) getStructure(w http.ResponseWriter, r *http.Request, id string) {
	structure, err := a.store.Structures(r.Context()).Find(r.Context(), id)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, structure)
}

func (a *API) submitStructure(w http.ResponseWriter, r *http.Request, seed forms.StructureForm) {
	form, err := a.decodeStructureForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form.Mode = seed.Mode
	if seed.ID != "" {
		form.ID = seed.ID
	}
	structure, err := a.forms.SubmitStructure(r.Context(), form)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	code := http.StatusCreated
	if form.Mode == forms.ModeEdit {
		code = http.StatusOK
	}
	writeJSON(w, code, structure)
}

func (a *API) decodeStructureForm(w http.ResponseWriter, r *http.Request) (forms.StructureForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var form forms.StructureForm
		err := decodeJSON(w, r, &form)
		return form, err
	}
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		return forms.StructureForm{}, errors.New("invalid multipart form")
	}
	form := forms.StructureForm{
		Name: r.FormValue("name"),
		City: r.FormValue("city"),
	}
	file, header, err := r.FormFile("charter")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
		if err != nil {
			return forms.StructureForm{}, errors.New("failed to read charter")
		}
		form.Charter = &forms.Upload{Filename: header.Filename, Data: data}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return forms.StructureForm{}, errors.New("invalid charter attachment")
	}
	return form, nil
}

// deleteStructure removes the row only. Profiles and content keep their
// structure_id; they render under "National" until reassigned.
func (a *API) deleteStructure(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.store.Structures(r.Context()).Delete(r.Context(), id); err != nil {
		handleContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- users ---

type userView struct {
	content.Profile
	Avatar string `json:"avatar"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.inviteUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if id == "invite" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.inviteUser(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		a.editUser(w, r, id)
	case http.MethodDelete:
		a.deleteUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.store.Profiles(r.Context()).List(r.Context())
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	items := make([]userView, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, userView{Profile: p, Avatar: content.Initials(p.DisplayName())})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) inviteUser(w http.ResponseWriter, r *http.Request) {
	var form forms.UserForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form.Mode = forms.ModeInvite
	if _, err := a.forms.SubmitUser(r.Context(), form); err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "invited"})
}

func (a *API) editUser(w http.ResponseWriter, r *http.Request, id string) {
	var form forms.UserForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form.Mode = forms.ModeEdit
	form.ID = id
	profile, err := a.forms.SubmitUser(r.Context(), form)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userView{Profile: *profile, Avatar: content.Initials(profile.DisplayName())})
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.store.Profiles(r.Context()).Delete(r.Context(), id); err != nil {
		handleContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- allowed domains ---

func (a *API) handleDomainsCollection(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listDomains(w, r)
	case http.MethodPost:
		a.createDomain(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleDomainResource(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/domains/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := a.store.Domains(r.Context()).Delete(r.Context(), id); err != nil {
		handleContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listDomains(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.Domains(r.Context()).List(r.Context())
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createDomain(w http.ResponseWriter, r *http.Request) {
	var form forms.DomainForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := a.forms.SubmitDomain(r.Context(), form)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

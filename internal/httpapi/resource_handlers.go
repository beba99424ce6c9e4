package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/forms"
	"github.com/DoukyDPA/mission-ia/internal/storage"
)

type listResourcesResponse struct {
	Items  []content.Resource            `json:"items"`
	Groups map[string][]content.Resource `json:"groups"`
	AsOf   time.Time                     `json:"as_of"`
}

func (a *API) handleResourcesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listResources(w, r)
	case http.MethodPost:
		a.submitResource(w, r, forms.ResourceForm{Mode: forms.ModeCreate})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleResourceResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/resources/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getResource(w, r, id)
	case http.MethodPut, http.MethodPatch:
		a.submitResource(w, r, forms.ResourceForm{Mode: forms.ModeEdit, ID: id})
	case http.MethodDelete:
		a.deleteResource(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// listResources returns the visible set both flat and grouped by
// display family (files, articles, videos, tools).
func (a *API) listResources(w http.ResponseWriter, r *http.Request) {
	all, err := a.store.Resources(r.Context()).List(r.Context())
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	items := content.FilterResources(all, viewer(r))
	groups := make(map[string][]content.Resource)
	for _, res := range items {
		g := content.DisplayGroup(res.FileType)
		groups[g] = append(groups[g], res)
	}
	writeJSON(w, http.StatusOK, listResourcesResponse{
		Items:  items,
		Groups: groups,
		AsOf:   time.Now().UTC(),
	})
}

func (a *API) getResource(w http.ResponseWriter, r *http.Request, id string) {
	resource, err := a.store.Resources(r.Context()).Find(r.Context(), id)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	if !content.ResourceVisible(*resource, viewer(r)) {
		writeError(w, r, http.StatusNotFound, content.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// submitResource accepts either a JSON body or multipart form data; the
// latter is how file resources arrive.
func (a *API) submitResource(w http.ResponseWriter, r *http.Request, seed forms.ResourceForm) {
	form, err := a.decodeResourceForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form.Mode = seed.Mode
	if seed.ID != "" {
		form.ID = seed.ID
	}

	resource, err := a.forms.SubmitResource(r.Context(), viewer(r), form)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	code := http.StatusCreated
	if form.Mode == forms.ModeEdit {
		code = http.StatusOK
	}
	writeJSON(w, code, resource)
}

func (a *API) decodeResourceForm(w http.ResponseWriter, r *http.Request) (forms.ResourceForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var form forms.ResourceForm
		err := decodeJSON(w, r, &form)
		return form, err
	}

	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		return forms.ResourceForm{}, errors.New("invalid multipart form")
	}
	form := forms.ResourceForm{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		FileType:    r.FormValue("file_type"),
		URL:         r.FormValue("url"),
		Description: r.FormValue("description"),
		AccessScope: r.FormValue("access_scope"),
		TargetID:    r.FormValue("target_structure_id"),
	}
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
		if err != nil {
			return forms.ResourceForm{}, errors.New("failed to read attachment")
		}
		form.File = &forms.Upload{Filename: header.Filename, Data: data}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return forms.ResourceForm{}, errors.New("invalid attachment")
	}
	return form, nil
}

func (a *API) deleteResource(w http.ResponseWriter, r *http.Request, id string) {
	v := viewer(r)
	resource, err := a.store.Resources(r.Context()).Find(r.Context(), id)
	if err != nil {
		handleContentError(w, r, err)
		return
	}
	if resource.UploadedBy != v.ProfileID && !v.Role.IsAdmin() {
		writeError(w, r, http.StatusForbidden, content.ErrForbidden.Error())
		return
	}
	if err := a.store.Resources(r.Context()).Delete(r.Context(), id); err != nil {
		handleContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

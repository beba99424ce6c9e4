package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/DoukyDPA/mission-ia/internal/audit"
	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/storage"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

// ResourceForm covers resource creation and editing. The payload field
// that matters depends on FileType: "file" expects an attachment,
// "text" expects Description, "link" and "video" expect URL.
type ResourceForm struct {
	Mode        string `json:"mode"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	FileType    string `json:"file_type"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	AccessScope string `json:"access_scope,omitempty"`
	TargetID    string `json:"target_structure_id,omitempty"`

	File *Upload `json:"-"`
}

// SubmitResource applies a resource form for the given viewer.
func (p *Processor) SubmitResource(ctx context.Context, viewer content.Viewer, form ResourceForm) (*content.Resource, error) {
	switch form.Mode {
	case ModeCreate, "":
		return p.createResource(ctx, viewer, form)
	case ModeEdit:
		return p.editResource(ctx, viewer, form)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, form.Mode)
	}
}

func parseFileType(raw string) (content.FileType, error) {
	switch content.FileType(raw) {
	case content.FileTypeFile, content.FileTypeText, content.FileTypeLink, content.FileTypeVideo:
		return content.FileType(raw), nil
	case content.FileTypePDF: // still accepted from older clients
		return content.FileTypeFile, nil
	default:
		return "", fmt.Errorf("%w: file_type %q", content.ErrInvalidInput, raw)
	}
}

func parseAccessScope(raw string) (content.AccessScope, error) {
	switch raw {
	case "", string(content.AccessGlobal):
		return content.AccessGlobal, nil
	case string(content.AccessLocal):
		return content.AccessLocal, nil
	default:
		return "", fmt.Errorf("%w: access_scope %q", content.ErrInvalidInput, raw)
	}
}

func (p *Processor) createResource(ctx context.Context, viewer content.Viewer, form ResourceForm) (*content.Resource, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", content.ErrInvalidInput)
	}
	fileType, err := parseFileType(form.FileType)
	if err != nil {
		return nil, err
	}
	accessScope, err := parseAccessScope(form.AccessScope)
	if err != nil {
		return nil, err
	}
	targetID := form.TargetID
	if accessScope == content.AccessLocal && targetID == "" {
		targetID = viewer.StructureID
	}

	resource := content.Resource{
		Title:             title,
		Category:          strings.TrimSpace(form.Category),
		FileType:          fileType,
		AccessScope:       accessScope,
		TargetStructureID: targetID,
		UploadedBy:        viewer.ProfileID,
	}
	switch fileType {
	case content.FileTypeFile:
		url, err := p.uploadResourceFile(ctx, viewer.ProfileID, form.File)
		if err != nil {
			return nil, err
		}
		resource.FileURL = url
	case content.FileTypeText:
		if strings.TrimSpace(form.Description) == "" {
			return nil, fmt.Errorf("%w: text resources need a description", content.ErrInvalidInput)
		}
		resource.Description = form.Description
	default: // link, video
		url := strings.TrimSpace(form.URL)
		if url == "" {
			return nil, fmt.Errorf("%w: %s resources need a url", content.ErrInvalidInput, fileType)
		}
		resource.FileURL = url
	}

	if err := p.store.Resources(ctx).Create(ctx, &resource); err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "resource.create", map[string]any{
		"resource_id": resource.ID,
		"file_type":   string(fileType),
	})
	return &resource, nil
}

// editResource updates the named fields. Submitting without a new file
// keeps the stored file_url as is.
func (p *Processor) editResource(ctx context.Context, viewer content.Viewer, form ResourceForm) (*content.Resource, error) {
	if form.ID == "" {
		return nil, fmt.Errorf("%w: edit needs an id", content.ErrInvalidInput)
	}
	existing, err := p.store.Resources(ctx).Find(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if existing.UploadedBy != viewer.ProfileID && !viewer.Role.IsAdmin() {
		return nil, content.ErrForbidden
	}

	upd := store.ResourceUpdate{}
	if title := strings.TrimSpace(form.Title); title != "" {
		upd.Title = &title
	}
	if category := strings.TrimSpace(form.Category); category != "" {
		upd.Category = &category
	}
	if form.AccessScope != "" {
		accessScope, err := parseAccessScope(form.AccessScope)
		if err != nil {
			return nil, err
		}
		upd.AccessScope = &accessScope
		if accessScope == content.AccessLocal {
			targetID := form.TargetID
			if targetID == "" {
				targetID = viewer.StructureID
			}
			upd.TargetStructureID = &targetID
		} else {
			empty := ""
			upd.TargetStructureID = &empty
		}
	}
	if form.File != nil {
		url, err := p.uploadResourceFile(ctx, viewer.ProfileID, form.File)
		if err != nil {
			return nil, err
		}
		upd.FileURL = &url
	} else if form.URL != "" && existing.FileType != content.FileTypeText && existing.FileType != content.FileTypeFile {
		url := strings.TrimSpace(form.URL)
		upd.FileURL = &url
	}
	if form.Description != "" {
		upd.Description = &form.Description
	}

	updated, err := p.store.Resources(ctx).Update(ctx, form.ID, upd)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "resource.edit", map[string]any{"resource_id": form.ID})
	return updated, nil
}

func (p *Processor) uploadResourceFile(ctx context.Context, profileID string, file *Upload) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", fmt.Errorf("%w: file resources need an attachment", content.ErrInvalidInput)
	}
	if p.files == nil {
		return "", fmt.Errorf("%w: no storage backend configured", content.ErrInvalidInput)
	}
	path, err := storage.ResourcePath(profileID, file.Filename, p.now())
	if err != nil {
		return "", fmt.Errorf("%w: %s", content.ErrInvalidInput, err)
	}
	return p.files.Upload(ctx, storage.BucketDocuments, path, file.Data)
}

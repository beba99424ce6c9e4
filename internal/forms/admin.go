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

// StructureForm covers structure creation and editing, with an optional
// charter attachment.
type StructureForm struct {
	Mode string `json:"mode"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	City string `json:"city"`

	Charter *Upload `json:"-"`
}

// SubmitStructure applies a structure form. Admin only; the caller
// enforces that before getting here.
func (p *Processor) SubmitStructure(ctx context.Context, form StructureForm) (*content.Structure, error) {
	switch form.Mode {
	case ModeCreate, "":
		return p.createStructure(ctx, form)
	case ModeEdit:
		return p.editStructure(ctx, form)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, form.Mode)
	}
}

func (p *Processor) createStructure(ctx context.Context, form StructureForm) (*content.Structure, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", content.ErrInvalidInput)
	}
	structure := content.Structure{Name: name, City: strings.TrimSpace(form.City)}
	if form.Charter != nil {
		url, err := p.uploadCharter(ctx, form.Charter)
		if err != nil {
			return nil, err
		}
		structure.HasCharter = true
		structure.CharterURL = url
	}
	if err := p.store.Structures(ctx).Create(ctx, &structure); err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "structure.create", map[string]any{"structure_id": structure.ID})
	return &structure, nil
}

func (p *Processor) editStructure(ctx context.Context, form StructureForm) (*content.Structure, error) {
	if form.ID == "" {
		return nil, fmt.Errorf("%w: edit needs an id", content.ErrInvalidInput)
	}
	upd := store.StructureUpdate{}
	if name := strings.TrimSpace(form.Name); name != "" {
		upd.Name = &name
	}
	if city := strings.TrimSpace(form.City); city != "" {
		upd.City = &city
	}
	if form.Charter != nil {
		url, err := p.uploadCharter(ctx, form.Charter)
		if err != nil {
			return nil, err
		}
		hasCharter := true
		upd.HasCharter = &hasCharter
		upd.CharterURL = &url
	}
	updated, err := p.store.Structures(ctx).Update(ctx, form.ID, upd)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "structure.edit", map[string]any{"structure_id": form.ID})
	return updated, nil
}

func (p *Processor) uploadCharter(ctx context.Context, file *Upload) (string, error) {
	if len(file.Data) == 0 {
		return "", fmt.Errorf("%w: charter attachment is empty", content.ErrInvalidInput)
	}
	if p.files == nil {
		return "", fmt.Errorf("%w: no storage backend configured", content.ErrInvalidInput)
	}
	path := storage.CharterPath(file.Filename, p.now())
	return p.files.Upload(ctx, storage.BucketDocuments, path, file.Data)
}

// UserForm covers admin edits to existing accounts and invitations.
// Invites only record intent: no mail is sent, the invitee registers
// through the normal flow once their domain is allow-listed.
type UserForm struct {
	Mode        string `json:"mode"`
	ID          string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Role        string `json:"role,omitempty"`
	StructureID string `json:"structure_id,omitempty"`
}

// SubmitUser applies a user form. Admin only.
func (p *Processor) SubmitUser(ctx context.Context, form UserForm) (*content.Profile, error) {
	switch form.Mode {
	case ModeEdit, "":
		return p.editUser(ctx, form)
	case ModeInvite:
		return nil, p.inviteUser(ctx, form)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, form.Mode)
	}
}

func (p *Processor) editUser(ctx context.Context, form UserForm) (*content.Profile, error) {
	if form.ID == "" {
		return nil, fmt.Errorf("%w: edit needs an id", content.ErrInvalidInput)
	}
	upd := store.ProfileUpdate{}
	if name := strings.TrimSpace(form.FullName); name != "" {
		upd.FullName = &name
	}
	if role := strings.TrimSpace(form.Role); role != "" {
		upd.Role = &role
	}
	if form.StructureID != "" {
		upd.StructureID = &form.StructureID
	}
	updated, err := p.store.Profiles(ctx).Update(ctx, form.ID, upd)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "user.edit", map[string]any{"profile_id": form.ID})
	return updated, nil
}

func (p *Processor) inviteUser(ctx context.Context, form UserForm) error {
	email := strings.ToLower(strings.TrimSpace(form.Email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invite needs an email", content.ErrInvalidInput)
	}
	audit.LogEvent(ctx, "user.invite", map[string]any{
		"email":        email,
		"structure_id": form.StructureID,
	})
	return nil
}

// DomainForm adds an entry to the registration allow-list.
type DomainForm struct {
	Domain      string `json:"domain"`
	StructureID string `json:"structure_id,omitempty"`
}

// SubmitDomain normalizes and stores an allow-list entry. Admin only.
func (p *Processor) SubmitDomain(ctx context.Context, form DomainForm) (*content.AllowedDomain, error) {
	domain, err := content.NormalizeDomain(form.Domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", content.ErrInvalidInput, err)
	}
	entry := content.AllowedDomain{Domain: domain, StructureID: form.StructureID}
	if err := p.store.Domains(ctx).Create(ctx, &entry); err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "domain.create", map[string]any{"domain": domain})
	return &entry, nil
}

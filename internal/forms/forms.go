// Package forms processes the content submission forms. Each form is a
// single struct multiplexed over its modes: the same payload creates,
// edits or forks depending on Mode, mirroring how the submission dialogs
// reuse one form per entity.
package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/audit"
	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/storage"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

// Form modes. Not every form supports every mode.
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
	ModeFork   = "fork"
	ModeInvite = "invite"
)

var ErrUnknownMode = errors.New("forms: unknown mode")

// Processor validates and applies form submissions against the store.
type Processor struct {
	store store.Store
	files storage.Store
	now   func() time.Time
}

// NewProcessor wires the form layer. files may be nil when no storage
// backend is configured; uploads then fail with ErrInvalidInput.
func NewProcessor(st store.Store, files storage.Store) *Processor {
	return &Processor{store: st, files: files, now: time.Now}
}

// WithClock overrides the timestamp source used in storage paths.
func (p *Processor) WithClock(fn func() time.Time) *Processor {
	if fn != nil {
		p.now = fn
	}
	return p
}

// Upload is an in-memory file attachment coming off a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// PromptForm covers prompt creation, editing and forking.
type PromptForm struct {
	Mode     string   `json:"mode"`
	ID       string   `json:"id,omitempty"`        // edit target
	ParentID string   `json:"parent_id,omitempty"` // fork source
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Scope    string   `json:"scope,omitempty"`
}

// SubmitPrompt applies a prompt form for the given viewer.
func (p *Processor) SubmitPrompt(ctx context.Context, viewer content.Viewer, form PromptForm) (*content.Prompt, error) {
	switch form.Mode {
	case ModeCreate, "":
		return p.createPrompt(ctx, viewer, form)
	case ModeEdit:
		return p.editPrompt(ctx, viewer, form)
	case ModeFork:
		return p.forkPrompt(ctx, viewer, form)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, form.Mode)
	}
}

func parseScope(raw string) (content.Scope, error) {
	switch raw {
	case "", string(content.ScopeLocal):
		return content.ScopeLocal, nil
	case string(content.ScopeNetwork):
		return content.ScopeNetwork, nil
	default:
		return "", fmt.Errorf("%w: scope %q", content.ErrInvalidInput, raw)
	}
}

func (p *Processor) createPrompt(ctx context.Context, viewer content.Viewer, form PromptForm) (*content.Prompt, error) {
	title := strings.TrimSpace(form.Title)
	body := strings.TrimSpace(form.Content)
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title and content are required", content.ErrInvalidInput)
	}
	scope, err := parseScope(form.Scope)
	if err != nil {
		return nil, err
	}
	author, err := p.store.Profiles(ctx).Find(ctx, viewer.ProfileID)
	if err != nil {
		return nil, err
	}
	prompt := content.Prompt{
		Title:       title,
		Content:     body,
		Category:    strings.TrimSpace(form.Category),
		Tags:        cleanTags(form.Tags),
		Scope:       scope,
		StructureID: viewer.StructureID,
		AuthorID:    viewer.ProfileID,
		AuthorName:  author.DisplayName(),
		AuthorRole:  author.Role,
	}
	prompt.Avatar = content.Initials(prompt.AuthorName)
	if err := p.store.Prompts(ctx).Create(ctx, &prompt); err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "prompt.create", map[string]any{"prompt_id": prompt.ID})
	return &prompt, nil
}

func (p *Processor) editPrompt(ctx context.Context, viewer content.Viewer, form PromptForm) (*content.Prompt, error) {
	if form.ID == "" {
		return nil, fmt.Errorf("%w: edit needs an id", content.ErrInvalidInput)
	}
	existing, err := p.store.Prompts(ctx).Find(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != viewer.ProfileID && !viewer.Role.IsAdmin() {
		return nil, content.ErrForbidden
	}
	upd := store.PromptUpdate{}
	if title := strings.TrimSpace(form.Title); title != "" {
		upd.Title = &title
	}
	if body := strings.TrimSpace(form.Content); body != "" {
		upd.Content = &body
	}
	if category := strings.TrimSpace(form.Category); category != "" {
		upd.Category = &category
	}
	if form.Tags != nil {
		upd.Tags = cleanTags(form.Tags)
	}
	if form.Scope != "" {
		scope, err := parseScope(form.Scope)
		if err != nil {
			return nil, err
		}
		upd.Scope = &scope
	}
	updated, err := p.store.Prompts(ctx).Update(ctx, form.ID, upd)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "prompt.edit", map[string]any{"prompt_id": form.ID})
	return updated, nil
}

// forkPrompt copies the source prompt into the viewer's own space. The
// original is never touched; the copy carries is_fork and parent_id and
// may immediately diverge through the form fields.
func (p *Processor) forkPrompt(ctx context.Context, viewer content.Viewer, form PromptForm) (*content.Prompt, error) {
	if form.ParentID == "" {
		return nil, fmt.Errorf("%w: fork needs a parent_id", content.ErrInvalidInput)
	}
	parent, err := p.store.Prompts(ctx).Find(ctx, form.ParentID)
	if err != nil {
		return nil, err
	}
	author, err := p.store.Profiles(ctx).Find(ctx, viewer.ProfileID)
	if err != nil {
		return nil, err
	}
	fork := content.Prompt{
		Title:       parent.Title,
		Content:     parent.Content,
		Category:    parent.Category,
		Tags:        append([]string(nil), parent.Tags...),
		Scope:       content.ScopeLocal,
		StructureID: viewer.StructureID,
		AuthorID:    viewer.ProfileID,
		AuthorName:  author.DisplayName(),
		AuthorRole:  author.Role,
		IsFork:      true,
		ParentID:    parent.ID,
		// Attribution is copied here so "Variante de ..." still renders
		// after the parent is deleted.
		ParentAuthor: parent.AuthorName,
	}
	if title := strings.TrimSpace(form.Title); title != "" {
		fork.Title = title
	}
	if body := strings.TrimSpace(form.Content); body != "" {
		fork.Content = body
	}
	if form.Scope != "" {
		scope, err := parseScope(form.Scope)
		if err != nil {
			return nil, err
		}
		fork.Scope = scope
	}
	fork.Avatar = content.Initials(fork.AuthorName)
	if err := p.store.Prompts(ctx).Create(ctx, &fork); err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "prompt.fork", map[string]any{
		"prompt_id": fork.ID,
		"parent_id": parent.ID,
	})
	return &fork, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

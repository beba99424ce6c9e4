package store

import (
	"context"

	"github.com/DoukyDPA/mission-ia/internal/content"
)

// Store describes persistence operations required by the application.
// Implementations are cache-free: every call round-trips to the backing
// data, which keeps the refresh-after-mutation contract trivially true.
type Store interface {
	Structures(ctx context.Context) StructureStore
	Profiles(ctx context.Context) ProfileStore
	Prompts(ctx context.Context) PromptStore
	Resources(ctx context.Context) ResourceStore
	Domains(ctx context.Context) DomainStore
}

// StructureStore manages tenant structures.
type StructureStore interface {
	Create(ctx context.Context, s *content.Structure) error
	Find(ctx context.Context, id string) (*content.Structure, error)
	List(ctx context.Context) ([]content.Structure, error)
	Update(ctx context.Context, id string, upd StructureUpdate) (*content.Structure, error)
	// Delete removes the row only. References from profiles, prompts and
	// resources are left dangling on purpose; see DESIGN.md.
	Delete(ctx context.Context, id string) error
}

// ProfileStore manages user accounts.
type ProfileStore interface {
	Create(ctx context.Context, p *content.Profile) error
	Find(ctx context.Context, id string) (*content.Profile, error)
	FindByEmail(ctx context.Context, email string) (*content.Profile, error)
	List(ctx context.Context) ([]content.Profile, error)
	Update(ctx context.Context, id string, upd ProfileUpdate) (*content.Profile, error)
	Delete(ctx context.Context, id string) error
}

// PromptStore manages shared prompts.
type PromptStore interface {
	Create(ctx context.Context, p *content.Prompt) error
	Find(ctx context.Context, id string) (*content.Prompt, error)
	// List returns all prompts newest first; visibility narrowing happens
	// in the content package over the fetched set.
	List(ctx context.Context) ([]content.Prompt, error)
	Update(ctx context.Context, id string, upd PromptUpdate) (*content.Prompt, error)
	Delete(ctx context.Context, id string) error
}

// ResourceStore manages training resources.
type ResourceStore interface {
	Create(ctx context.Context, r *content.Resource) error
	Find(ctx context.Context, id string) (*content.Resource, error)
	List(ctx context.Context) ([]content.Resource, error)
	Update(ctx context.Context, id string, upd ResourceUpdate) (*content.Resource, error)
	Delete(ctx context.Context, id string) error
}

// DomainStore manages the registration allow-list.
type DomainStore interface {
	Create(ctx context.Context, d *content.AllowedDomain) error
	List(ctx context.Context) ([]content.AllowedDomain, error)
	Delete(ctx context.Context, id string) error
}

// StructureUpdate mutates the named fields; nil means keep.
type StructureUpdate struct {
	Name       *string
	City       *string
	HasCharter *bool
	CharterURL *string
}

// ProfileUpdate mutates the named fields; nil means keep.
type ProfileUpdate struct {
	FullName    *string
	Role        *string
	StructureID *string
}

// PromptUpdate mutates the named fields; nil means keep.
type PromptUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
	Scope    *content.Scope
}

// ResourceUpdate mutates the named fields; nil means keep.
type ResourceUpdate struct {
	Title             *string
	Category          *string
	FileType          *content.FileType
	FileURL           *string
	Description       *string
	AccessScope       *content.AccessScope
	TargetStructureID *string
}

// Package memory implements store.Store without a database. It backs the
// preview operating mode, where the service runs on deterministic demo
// data because no Postgres DSN was configured, and doubles as the store
// used by handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/ids"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	structures map[string]content.Structure
	profiles   map[string]content.Profile
	prompts    map[string]content.Prompt
	resources  map[string]content.Resource
	domains    map[string]content.AllowedDomain
	now        func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		structures: make(map[string]content.Structure),
		profiles:   make(map[string]content.Profile),
		prompts:    make(map[string]content.Prompt),
		resources:  make(map[string]content.Resource),
		domains:    make(map[string]content.AllowedDomain),
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test use only.
func (s *Store) WithClock(fn func() time.Time) *Store {
	if fn != nil {
		s.now = fn
	}
	return s
}

func (s *Store) Structures(context.Context) store.StructureStore { return structureStore{s} }
func (s *Store) Profiles(context.Context) store.ProfileStore     { return profileStore{s} }
func (s *Store) Prompts(context.Context) store.PromptStore       { return promptStore{s} }
func (s *Store) Resources(context.Context) store.ResourceStore   { return resourceStore{s} }
func (s *Store) Domains(context.Context) store.DomainStore       { return domainStore{s} }

// --- structures ---

type structureStore struct{ s *Store }

func (st structureStore) Create(_ context.Context, v *content.Structure) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	if _, exists := st.s.structures[v.ID]; exists {
		return content.ErrConflict
	}
	now := st.s.now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	st.s.structures[v.ID] = *v
	return nil
}

func (st structureStore) Find(_ context.Context, id string) (*content.Structure, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	v, ok := st.s.structures[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &v, nil
}

func (st structureStore) List(context.Context) ([]content.Structure, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]content.Structure, 0, len(st.s.structures))
	for _, v := range st.s.structures {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (st structureStore) Update(_ context.Context, id string, upd store.StructureUpdate) (*content.Structure, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	v, ok := st.s.structures[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if upd.Name != nil {
		v.Name = *upd.Name
	}
	if upd.City != nil {
		v.City = *upd.City
	}
	if upd.HasCharter != nil {
		v.HasCharter = *upd.HasCharter
	}
	if upd.CharterURL != nil {
		v.CharterURL = *upd.CharterURL
	}
	v.UpdatedAt = st.s.now().UTC()
	st.s.structures[id] = v
	return &v, nil
}

func (st structureStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.structures[id]; !ok {
		return content.ErrNotFound
	}
	delete(st.s.structures, id)
	return nil
}

// --- profiles ---

type profileStore struct{ s *Store }

func (st profileStore) Create(_ context.Context, v *content.Profile) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	email := strings.ToLower(strings.TrimSpace(v.Email))
	for _, existing := range st.s.profiles {
		if strings.EqualFold(existing.Email, email) {
			return content.ErrConflict
		}
	}
	v.Email = email
	now := st.s.now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	st.s.profiles[v.ID] = *v
	return nil
}

func (st profileStore) Find(_ context.Context, id string) (*content.Profile, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	v, ok := st.s.profiles[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &v, nil
}

func (st profileStore) FindByEmail(_ context.Context, email string) (*content.Profile, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	for _, v := range st.s.profiles {
		if strings.EqualFold(v.Email, strings.TrimSpace(email)) {
			return &v, nil
		}
	}
	return nil, content.ErrNotFound
}

func (st profileStore) List(context.Context) ([]content.Profile, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]content.Profile, 0, len(st.s.profiles))
	for _, v := range st.s.profiles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (st profileStore) Update(_ context.Context, id string, upd store.ProfileUpdate) (*content.Profile, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	v, ok := st.s.profiles[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if upd.FullName != nil {
		v.FullName = *upd.FullName
	}
	if upd.Role != nil {
		v.Role = *upd.Role
	}
	if upd.StructureID != nil {
		v.StructureID = *upd.StructureID
	}
	v.UpdatedAt = st.s.now().UTC()
	st.s.profiles[id] = v
	return &v, nil
}

func (st profileStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.profiles[id]; !ok {
		return content.ErrNotFound
	}
	delete(st.s.profiles, id)
	return nil
}

// --- prompts ---

type promptStore struct{ s *Store }

func (st promptStore) Create(_ context.Context, v *content.Prompt) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	if _, exists := st.s.prompts[v.ID]; exists {
		return content.ErrConflict
	}
	now := st.s.now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	st.s.prompts[v.ID] = clonePrompt(*v)
	return nil
}

func (st promptStore) Find(_ context.Context, id string) (*content.Prompt, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	v, ok := st.s.prompts[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	out := clonePrompt(v)
	return &out, nil
}

func (st promptStore) List(context.Context) ([]content.Prompt, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]content.Prompt, 0, len(st.s.prompts))
	for _, v := range st.s.prompts {
		out = append(out, clonePrompt(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (st promptStore) Update(_ context.Context, id string, upd store.PromptUpdate) (*content.Prompt, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	v, ok := st.s.prompts[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Content != nil {
		v.Content = *upd.Content
	}
	if upd.Category != nil {
		v.Category = *upd.Category
	}
	if upd.Tags != nil {
		v.Tags = append([]string(nil), upd.Tags...)
	}
	if upd.Scope != nil {
		v.Scope = *upd.Scope
	}
	v.UpdatedAt = st.s.now().UTC()
	st.s.prompts[id] = v
	out := clonePrompt(v)
	return &out, nil
}

func (st promptStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.prompts[id]; !ok {
		return content.ErrNotFound
	}
	// Forks of this prompt keep their parent_id; dangling on purpose.
	delete(st.s.prompts, id)
	return nil
}

func clonePrompt(p content.Prompt) content.Prompt {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

// --- resources ---

type resourceStore struct{ s *Store }

func (st resourceStore) Create(_ context.Context, v *content.Resource) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	if _, exists := st.s.resources[v.ID]; exists {
		return content.ErrConflict
	}
	now := st.s.now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	st.s.resources[v.ID] = *v
	return nil
}

func (st resourceStore) Find(_ context.Context, id string) (*content.Resource, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	v, ok := st.s.resources[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &v, nil
}

func (st resourceStore) List(context.Context) ([]content.Resource, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]content.Resource, 0, len(st.s.resources))
	for _, v := range st.s.resources {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (st resourceStore) Update(_ context.Context, id string, upd store.ResourceUpdate) (*content.Resource, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	v, ok := st.s.resources[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Category != nil {
		v.Category = *upd.Category
	}
	if upd.FileType != nil {
		v.FileType = *upd.FileType
	}
	if upd.FileURL != nil {
		v.FileURL = *upd.FileURL
	}
	if upd.Description != nil {
		v.Description = *upd.Description
	}
	if upd.AccessScope != nil {
		v.AccessScope = *upd.AccessScope
	}
	if upd.TargetStructureID != nil {
		v.TargetStructureID = *upd.TargetStructureID
	}
	v.UpdatedAt = st.s.now().UTC()
	st.s.resources[id] = v
	return &v, nil
}

func (st resourceStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.resources[id]; !ok {
		return content.ErrNotFound
	}
	delete(st.s.resources, id)
	return nil
}

// --- allowed domains ---

type domainStore struct{ s *Store }

func (st domainStore) Create(_ context.Context, v *content.AllowedDomain) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	for _, existing := range st.s.domains {
		if existing.Domain == v.Domain {
			return content.ErrConflict
		}
	}
	v.CreatedAt = st.s.now().UTC()
	st.s.domains[v.ID] = *v
	return nil
}

func (st domainStore) List(context.Context) ([]content.AllowedDomain, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]content.AllowedDomain, 0, len(st.s.domains))
	for _, v := range st.s.domains {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (st domainStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.domains[id]; !ok {
		return content.ErrNotFound
	}
	delete(st.s.domains, id)
	return nil
}

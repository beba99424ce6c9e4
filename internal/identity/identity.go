// Package identity resolves sessions: login, registration, session
// restore from a bearer token, and logout.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/audit"
	"github.com/DoukyDPA/mission-ia/internal/auth"
	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

var (
	ErrUserNotFound     = errors.New("identity: user not found")
	ErrBadCredentials   = errors.New("identity: bad credentials")
	ErrDomainNotAllowed = errors.New("identity: email domain not allowed")
	ErrEmailTaken       = errors.New("identity: email already registered")
	ErrNoSession        = errors.New("identity: no session")
)

const (
	defaultSessionTTL    = 24 * time.Hour
	defaultRoleTitle     = "Conseiller"
	defaultStructureName = "National"
)

// User is the resolved session view-model handed to the API layer.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	RoleTitle     string    `json:"role"`
	Role          auth.Role `json:"access_role"`
	StructureID   string    `json:"structure_id,omitempty"`
	StructureName string    `json:"structure"`
	Avatar        string    `json:"avatar"`
}

// Session pairs the resolved user with its bearer token.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// Service builds sessions on top of the profile store.
type Service struct {
	store store.Store

	sessionTTL time.Duration
	preview    bool
}

// Option configures Service behavior.
type Option func(*Service)

// WithSessionTTL sets the issued token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithPreviewMode skips password verification: any known email logs in.
// Only sensible in front of the seeded in-memory store.
func WithPreviewMode(enabled bool) Option {
	return func(s *Service) { s.preview = enabled }
}

// NewService constructs the session resolver.
func NewService(st store.Store, opts ...Option) *Service {
	svc := &Service{
		store:      st,
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Login verifies credentials and mints a session token. In preview mode
// the password is ignored and any seeded email signs in.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadCredentials
	}
	profile, err := s.store.Profiles(ctx).FindByEmail(ctx, email)
	if errors.Is(err, content.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.preview {
		if err := auth.VerifyPassword(profile.PasswordHash, password); err != nil {
			return nil, ErrBadCredentials
		}
	}
	session, err := s.buildSession(ctx, profile)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "auth.login", map[string]any{"profile_id": profile.ID})
	return session, nil
}

// Register creates a profile after checking the email domain against the
// allow-list, then signs the new profile in. The domain check runs before
// any write; a rejected registration leaves no trace.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, content.ErrInvalidInput
	}
	if at := strings.LastIndex(email, "@"); at <= 0 || at == len(email)-1 {
		return nil, content.ErrInvalidInput
	}

	domains, err := s.store.Domains(ctx).List(ctx)
	if err != nil {
		return nil, err
	}
	matched, ok := content.FindDomain(domains, email)
	if !ok {
		return nil, ErrDomainNotAllowed
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	profile := content.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Role:         defaultRoleTitle,
		StructureID:  matched.StructureID,
		PasswordHash: hash,
	}
	if err := s.store.Profiles(ctx).Create(ctx, &profile); err != nil {
		if errors.Is(err, content.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	session, err := s.buildSession(ctx, &profile)
	if err != nil {
		return nil, err
	}
	audit.LogEvent(ctx, "auth.register", map[string]any{
		"profile_id": profile.ID,
		"domain":     matched.Domain,
	})
	return session, nil
}

// Restore rebuilds the session view-model from a bearer token. Any
// lookup failure collapses into ErrNoSession so a stale token behaves
// like a signed-out browser, not an error page.
func (s *Service) Restore(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseAndValidate(token)
	if err != nil {
		return nil, ErrNoSession
	}
	profile, err := s.store.Profiles(ctx).Find(ctx, claims.Subject)
	if err != nil {
		audit.LogEvent(ctx, "auth.restore_failed", map[string]any{"profile_id": claims.Subject})
		return nil, ErrNoSession
	}
	user, err := s.buildUser(ctx, profile)
	if err != nil {
		return nil, ErrNoSession
	}
	return &Session{User: user}, nil
}

// Logout records the sign-out. Tokens are stateless; the client drops
// its copy.
func (s *Service) Logout(ctx context.Context, profileID string) {
	audit.LogEvent(ctx, "auth.logout", map[string]any{"profile_id": profileID})
}

func (s *Service) buildSession(ctx context.Context, profile *content.Profile) (*Session, error) {
	user, err := s.buildUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken(profile.ID, user.Role, profile.StructureID, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// buildUser denormalizes the profile into the session view-model.
// Missing fields fall back the way the directory displays them: name
// from the email local part, role title "Conseiller", structure
// "National" for profiles without one.
func (s *Service) buildUser(ctx context.Context, profile *content.Profile) (User, error) {
	name := profile.DisplayName()
	roleTitle := profile.Role
	if roleTitle == "" {
		roleTitle = defaultRoleTitle
	}
	structureName := defaultStructureName
	if profile.StructureID != "" {
		structure, err := s.store.Structures(ctx).Find(ctx, profile.StructureID)
		if err == nil {
			structureName = structure.Name
		} else if !errors.Is(err, content.ErrNotFound) {
			return User{}, err
		}
	}
	return User{
		ID:            profile.ID,
		Email:         profile.Email,
		Name:          name,
		RoleTitle:     roleTitle,
		Role:          auth.DeriveRole(roleTitle),
		StructureID:   profile.StructureID,
		StructureName: structureName,
		Avatar:        content.Initials(name),
	}, nil
}

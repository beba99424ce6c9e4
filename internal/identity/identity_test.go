package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/DoukyDPA/mission-ia/internal/auth"
	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/store/memory"
)

func setupSecret(t *testing.T) {
	t.Helper()
	t.Setenv("MISSIONIA_AUTH_SECRET", "identity-test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)
}

func TestPreviewLogin(t *testing.T) {
	setupSecret(t)
	svc := NewService(memory.Seeded(), WithPreviewMode(true))
	ctx := context.Background()

	session, err := svc.Login(ctx, "Jean.Dupont@ML-Lyon.fr", "ignored")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	u := session.User
	if u.ID != memory.ProfileJeanID {
		t.Fatalf("wrong profile: %+v", u)
	}
	if u.Name != "Jean Dupont" || u.RoleTitle != "Conseiller" || u.Role != auth.RoleMember {
		t.Fatalf("unexpected view-model: %+v", u)
	}
	if u.StructureName != "Mission Locale de Lyon" {
		t.Fatalf("structure not resolved: %+v", u)
	}
	if u.Avatar != "JE" {
		t.Fatalf("avatar = %q, want JE", u.Avatar)
	}
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
}

func TestPreviewLoginAdminDefaults(t *testing.T) {
	setupSecret(t)
	svc := NewService(memory.Seeded(), WithPreviewMode(true))

	session, err := svc.Login(context.Background(), "formateur@ia.fr", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.User.Role != auth.RoleAdmin {
		t.Fatalf("admin title must map to admin role: %+v", session.User)
	}
	if session.User.StructureName != "National" {
		t.Fatalf("profile without structure defaults to National: %+v", session.User)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	setupSecret(t)
	svc := NewService(memory.Seeded(), WithPreviewMode(true))

	if _, err := svc.Login(context.Background(), "nobody@ml-lyon.fr", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	setupSecret(t)
	st := memory.Seeded()
	svc := NewService(st)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "claire@ml-lyon.fr", "secret123", "Claire Petit"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, "claire@ml-lyon.fr", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "claire@ml-lyon.fr", "secret123"); err != nil {
		t.Fatalf("Login with correct password: %v", err)
	}
}

func TestRegisterBindsStructureFromDomain(t *testing.T) {
	setupSecret(t)
	st := memory.Seeded()
	svc := NewService(st)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Nouveau@ML-Lyon.fr", "secret123", "Nouveau Conseiller")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	u := session.User
	if u.StructureID != memory.StructureLyonID {
		t.Fatalf("structure not bound from domain: %+v", u)
	}
	if u.RoleTitle != "Conseiller" || u.Role != auth.RoleMember {
		t.Fatalf("new accounts default to Conseiller: %+v", u)
	}
	if u.Email != "nouveau@ml-lyon.fr" {
		t.Fatalf("email not normalized: %+v", u)
	}
}

func TestRegisterRejectsUnknownDomainBeforeWrite(t *testing.T) {
	setupSecret(t)
	st := memory.Seeded()
	svc := NewService(st)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "intrus@gmail.com", "secret123", "Intrus"); !errors.Is(err, ErrDomainNotAllowed) {
		t.Fatalf("expected ErrDomainNotAllowed, got %v", err)
	}
	// The rejection must leave no account behind.
	if _, err := st.Profiles(ctx).FindByEmail(ctx, "intrus@gmail.com"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("rejected registration wrote a profile: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupSecret(t)
	svc := NewService(memory.Seeded())

	if _, err := svc.Register(context.Background(), "jean.dupont@ml-lyon.fr", "secret123", "Jean Bis"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	setupSecret(t)
	svc := NewService(memory.Seeded(), WithPreviewMode(true))
	ctx := context.Background()

	session, err := svc.Login(ctx, "sarah.martin@ml-paris.fr", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	restored, err := svc.Restore(ctx, session.Token)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.User.ID != session.User.ID || restored.User.StructureName != "Mission Locale de Paris" {
		t.Fatalf("restored user mismatch: %+v", restored.User)
	}
	if restored.Token != "" {
		t.Fatalf("restore must not mint a fresh token: %+v", restored)
	}
}

func TestRestoreFailures(t *testing.T) {
	setupSecret(t)
	st := memory.Seeded()
	svc := NewService(st, WithPreviewMode(true))
	ctx := context.Background()

	if _, err := svc.Restore(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty token: got %v", err)
	}
	if _, err := svc.Restore(ctx, "not-a-token"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("garbage token: got %v", err)
	}

	// A valid token whose profile has since been deleted behaves like a
	// signed-out browser.
	session, err := svc.Login(ctx, "jean.dupont@ml-lyon.fr", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := st.Profiles(ctx).Delete(ctx, memory.ProfileJeanID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Restore(ctx, session.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stale token: got %v", err)
	}
}

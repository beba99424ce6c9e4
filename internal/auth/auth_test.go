package auth

import (
	"context"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Setenv("MISSIONIA_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("profile-42", RoleAdmin, "struct-7", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "profile-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Issuer != "missionia" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.Role != string(RoleAdmin) {
		t.Fatalf("role was not preserved: %v", claims.Role)
	}
	if claims.StructureID != "struct-7" {
		t.Fatalf("structure was not preserved: %v", claims.StructureID)
	}
}

func TestGenerateTokenRejectsBadInput(t *testing.T) {
	t.Setenv("MISSIONIA_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	if _, err := GenerateToken("", RoleMember, "", time.Minute); err == nil {
		t.Fatal("expected error for empty profile id")
	}
	if _, err := GenerateToken("p1", RoleMember, "", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}

func TestParseAndValidateRejectsGarbage(t *testing.T) {
	t.Setenv("MISSIONIA_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseAndValidate(token); err == nil {
			t.Fatalf("expected rejection of %q", token)
		}
	}
}

func TestParseAndValidateExpired(t *testing.T) {
	t.Setenv("MISSIONIA_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("profile-1", RoleMember, "", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseAndValidate(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestDeriveRole(t *testing.T) {
	cases := map[string]Role{
		"Admin":      RoleAdmin,
		"admin":      RoleAdmin,
		"  ADMIN  ":  RoleAdmin,
		"Conseiller": RoleMember,
		"Directrice": RoleMember,
		"":           RoleMember,
	}
	for title, expected := range cases {
		if got := DeriveRole(title); got != expected {
			t.Fatalf("DeriveRole(%q)=%q, want %q", title, got, expected)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithUser(ctx, "profile-7", RoleAdmin, "struct-1")

	id, ok := UserIDFromContext(ctx)
	if !ok || id != "profile-7" {
		t.Fatalf("unexpected user id: %s, ok=%v", id, ok)
	}
	if RoleFromContext(ctx) != RoleAdmin {
		t.Fatalf("unexpected role: %v", RoleFromContext(ctx))
	}
	if StructureIDFromContext(ctx) != "struct-1" {
		t.Fatalf("unexpected structure: %v", StructureIDFromContext(ctx))
	}
	if !IsAdmin(ctx) {
		t.Fatal("expected admin context")
	}

	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no user")
	}
	if IsAdmin(context.Background()) {
		t.Fatal("empty context should not be admin")
	}
}

func TestEphemeralSecretMintsTokens(t *testing.T) {
	t.Setenv("MISSIONIA_AUTH_SECRET", "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if SecretConfigured() {
		t.Fatal("secret must not be configured")
	}
	if _, err := GenerateToken("profile-1", RoleMember, "", time.Hour); err == nil {
		t.Fatal("expected error without a secret")
	}

	ResetSecretForTests()
	if err := GenerateEphemeralSecret(); err != nil {
		t.Fatalf("GenerateEphemeralSecret: %v", err)
	}
	token, err := GenerateToken("profile-1", RoleMember, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "profile-1" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

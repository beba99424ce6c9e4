package auth

import (
	"context"
	"strings"
)

type ctxKey string

const (
	userIDKey    ctxKey = "auth_user_id"
	roleKey      ctxKey = "auth_role"
	structureKey ctxKey = "auth_structure_id"
)

// ContextWithUser stores the authenticated identity in the context.
func ContextWithUser(ctx context.Context, userID string, role Role, structureID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, strings.TrimSpace(userID))
	ctx = context.WithValue(ctx, roleKey, role)
	if structureID = strings.TrimSpace(structureID); structureID != "" {
		ctx = context.WithValue(ctx, structureKey, structureID)
	}
	return ctx
}

// UserIDFromContext extracts the authenticated profile ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// RoleFromContext returns the capability role stored in context,
// defaulting to member when absent.
func RoleFromContext(ctx context.Context) Role {
	if v, ok := ctx.Value(roleKey).(Role); ok {
		return v
	}
	return RoleMember
}

// StructureIDFromContext returns the viewer's structure scope, if any.
func StructureIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(structureKey).(string); ok {
		return v
	}
	return ""
}

// IsAdmin reports whether the context's identity carries the admin role.
func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx).IsAdmin()
}

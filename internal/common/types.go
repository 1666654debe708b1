package common

import (
	"context"
)

// AdminIdentity is the authenticated admin attached to a request context.
type AdminIdentity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type contextKey string

const adminKey contextKey = "admin"

func WithAdmin(ctx context.Context, admin AdminIdentity) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

func AdminFromContext(ctx context.Context) (AdminIdentity, bool) {
	admin, ok := ctx.Value(adminKey).(AdminIdentity)
	return admin, ok
}

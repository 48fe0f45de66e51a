package authctx

import (
	"context"

	"rewardshub-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	EmployeeID int64
	Name       string
	Email      string
	Location   string
	Role       domain.EmployeeRole
}

// Actor converts the authenticated user into the audit-trail actor shape.
func (u CurrentUser) Actor() domain.Actor {
	return domain.Actor{EmployeeID: u.EmployeeID, Name: u.Name}
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}

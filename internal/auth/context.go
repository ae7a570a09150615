package auth

import "context"

// HeaderOrganizationID carries the tenant scope on every API request.
const HeaderOrganizationID = "X-Organization-ID"

type UserContext struct {
	OrganizationID string
	UserID         string
}

type organizationKey struct{}

type userKey struct{}

func WithOrganizationID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, organizationKey{}, orgID)
}

// GetOrganizationID returns the organization placed on ctx by the API middleware.
func GetOrganizationID(ctx context.Context) string {
	if val, ok := ctx.Value(organizationKey{}).(string); ok {
		return val
	}
	return ""
}

func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserID returns the acting staff member, if the caller identified one.
func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userKey{}).(UserContext); ok {
		return val.UserID
	}
	return ""
}

// Package identity is the account/session collaborator: account creation,
// login by short numeric code, and token-to-user resolution.
package identity

import (
	"context"

	"peerchat/schemas"
)

// Service is the identity contract the chat core and gateway consume
type Service interface {
	Register(ctx context.Context, req schemas.RegisterSchema) (schemas.ProfileSchema, error)
	LoginWithCode(ctx context.Context, req schemas.LoginSchema) (schemas.LoginResponseSchema, error)
	CurrentUser(ctx context.Context, accessToken string) (schemas.ProfileSchema, error)
	Logout(ctx context.Context, userID string) error
}

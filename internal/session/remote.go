package session

import (
	"context"
	"errors"

	"portfolio-hub/internal/client"
)

// RemoteAuthService is the remote account directory the manager prefers.
// Implementations signal explicit rejections with *client.APIError; every
// other error is treated as a transport failure worth falling back from.
type RemoteAuthService interface {
	Register(ctx context.Context, name, email, password string) (token string, user User, err error)
	Login(ctx context.Context, email, password string) (token string, user User, err error)
	Me(ctx context.Context, token string) (User, error)
	UpdateProfile(ctx context.Context, token string, updates ProfileUpdate) (User, error)
}

func isRejection(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr)
}

// remoteAPI adapts the HTTP client to the RemoteAuthService interface.
type remoteAPI struct {
	api *client.Client
}

// NewRemoteAPI wraps the portfolio HTTP client as a RemoteAuthService.
func NewRemoteAPI(api *client.Client) RemoteAuthService {
	return &remoteAPI{api: api}
}

func (r *remoteAPI) Register(ctx context.Context, name, email, password string) (string, User, error) {
	result, err := r.api.Register(ctx, name, email, password)
	if err != nil {
		return "", User{}, err
	}
	return result.Token, fromWireUser(result.User), nil
}

func (r *remoteAPI) Login(ctx context.Context, email, password string) (string, User, error) {
	result, err := r.api.Login(ctx, email, password)
	if err != nil {
		return "", User{}, err
	}
	return result.Token, fromWireUser(result.User), nil
}

func (r *remoteAPI) Me(ctx context.Context, token string) (User, error) {
	user, err := r.api.Me(ctx, token)
	if err != nil {
		return User{}, err
	}
	return fromWireUser(*user), nil
}

func (r *remoteAPI) UpdateProfile(ctx context.Context, token string, updates ProfileUpdate) (User, error) {
	user, err := r.api.UpdateProfile(ctx, token, client.ProfileUpdate{
		Name:        updates.Name,
		Bio:         updates.Bio,
		DateOfBirth: updates.DateOfBirth,
	})
	if err != nil {
		return User{}, err
	}
	return fromWireUser(*user), nil
}

func fromWireUser(wire client.User) User {
	user := User{
		ID:              wire.ID,
		Name:            wire.Name,
		Email:           wire.Email,
		Role:            wire.Role,
		Bio:             wire.Bio,
		IsActive:        wire.IsActive,
		IsEmailVerified: wire.IsEmailVerified,
		LoginCount:      wire.LoginCount,
		CreatedAt:       wire.CreatedAt,
		UpdatedAt:       wire.UpdatedAt,
	}
	if wire.DateOfBirth != nil {
		user.DateOfBirth = *wire.DateOfBirth
	}
	return user
}

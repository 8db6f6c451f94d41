package api

import (
	"context"
	"net/http"
)

// AuthAPI groups the /auth endpoints. These requests never carry a token.
type AuthAPI struct {
	c *Client
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns its session token.
func (a AuthAPI) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var payload AuthResponse
	err := a.c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      credentials{Name: name, Email: email, Password: password},
		anonymous: true,
	}, &payload)
	return payload, err
}

// Login exchanges credentials for a session token.
func (a AuthAPI) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var payload AuthResponse
	err := a.c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      credentials{Email: email, Password: password},
		anonymous: true,
	}, &payload)
	return payload, err
}

// AdminLogin exchanges administrator credentials for a session token.
func (a AuthAPI) AdminLogin(ctx context.Context, email, password string) (AdminAuthResponse, error) {
	var payload AdminAuthResponse
	err := a.c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/admin/login",
		body:      credentials{Email: email, Password: password},
		anonymous: true,
	}, &payload)
	return payload, err
}

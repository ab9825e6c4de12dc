// Package api is the chat CLI's client for the gateway REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// response mirrors the gateway's ApiResponse with a typed payload.
type response[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type Session struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

type User struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userData struct {
	Username string `json:"username"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CheckUsername reports whether username is still free to sign up with.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	path := "/api/v1/checkUsername?" + url.Values{"username": {username}}.Encode()
	_, err := call[userData](ctx, c, http.MethodGet, path, "", nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorAlreadyExists):
		return false, nil
	default:
		return false, err
	}
}

func (c *Client) SignUp(ctx context.Context, username, password string) error {
	_, err := call[userData](ctx, c, http.MethodPost, "/api/v1/signUp", "", credentials{username, password})
	return err
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	return call[Session](ctx, c, http.MethodPost, "/api/v1/login", "", credentials{username, password})
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodGet, "/api/v1/logout", token, nil)
	return err
}

// Verify resolves token to its username.
func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	d, err := call[userData](ctx, c, http.MethodGet, "/api/v1/verify_access_token", token, nil)
	return d.Username, err
}

// Users lists everyone but the caller with their presence.
func (c *Client) Users(ctx context.Context, token string) ([]User, error) {
	return call[[]User](ctx, c, http.MethodGet, "/api/v1/getUsers", token, nil)
}

func call[T any](ctx context.Context, c *Client, method, path, token string, body any) (T, error) {
	var zero T

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return zero, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.TokenHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", common.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	var out response[T]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("%s %s: %s: unreadable response: %w", method, path, resp.Status, err)
	}

	if resp.StatusCode >= 300 {
		return zero, statusError(resp.StatusCode, out.Message)
	}
	return out.Data, nil
}

func statusError(code int, msg string) error {
	switch code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", common.ErrAuthorityUnavailable, msg)
	default:
		return fmt.Errorf("%w: %d %s", common.ErrorInternal, code, msg)
	}
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	goSession "github.com/avrik7/goSession"
)

const defaultUserAgent = "goSession-httpapi/1"

// Config controls Client construction.
type Config struct {
	// BaseURL is the auth service root, e.g. "https://api.example.com".
	// Required, no trailing slash needed.
	BaseURL string

	// HTTPClient overrides the underlying client. When nil a dedicated
	// client with a private cookie jar is created so the renewal cookie
	// never leaks into a shared jar.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// Client implements the goSession API client contract over HTTP.
type Client struct {
	base      string
	http      *http.Client
	userAgent string

	mu          sync.RWMutex
	tokenSource func() string
}

// New creates a Client. The zero-value Config is rejected; BaseURL is
// required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpapi: base URL required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("httpapi: cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		http:      httpClient,
		userAgent: userAgent,
	}, nil
}

// SetTokenSource wires in the engine's access credential getter. The builder
// calls this automatically when the client is passed to it.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	c.tokenSource = fn
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	fn := c.tokenSource
	c.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *wireProfile `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type wireRole struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type wireProfile struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Roles         []wireRole `json:"roles"`
	Permissions   []string   `json:"permissions"`
	IsSuperuser   bool       `json:"is_superuser"`
	LocationScope string     `json:"location_scope"`
}

func (w *wireProfile) toProfile() *goSession.UserProfile {
	if w == nil {
		return nil
	}
	profile := &goSession.UserProfile{
		ID:            w.ID,
		Username:      w.Username,
		Permissions:   w.Permissions,
		IsSuperuser:   w.IsSuperuser,
		LocationScope: w.LocationScope,
	}
	for _, role := range w.Roles {
		profile.Roles = append(profile.Roles, goSession.Role{
			Name:        role.Name,
			DisplayName: role.DisplayName,
		})
	}
	return profile
}

// Login exchanges credentials for an access token and the user record. The
// renewal cookie set by the server lands in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (string, *goSession.UserProfile, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", nil, fmt.Errorf("%w: encode login request: %v", goSession.ErrNetworkFailure, err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body), false)
	if err != nil {
		return "", nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", nil, fmt.Errorf("%w: %s", goSession.ErrLoginRejected, serverMessage(resp))
	default:
		return "", nil, fmt.Errorf("%w: login: unexpected status %d", goSession.ErrNetworkFailure, resp.StatusCode)
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", nil, fmt.Errorf("%w: decode login response: %v", goSession.ErrNetworkFailure, err)
	}
	if decoded.AccessToken == "" {
		return "", nil, fmt.Errorf("%w: login response missing access token", goSession.ErrNetworkFailure)
	}

	return decoded.AccessToken, decoded.User.toProfile(), nil
}

// Refresh renews the access token using the renewal cookie held in the jar.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, false)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: refresh: status %d", goSession.ErrAuthorizationRejected, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: refresh: unexpected status %d", goSession.ErrNetworkFailure, resp.StatusCode)
	}

	var decoded refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode refresh response: %v", goSession.ErrNetworkFailure, err)
	}
	if decoded.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh response missing access token", goSession.ErrNetworkFailure)
	}

	return decoded.AccessToken, nil
}

// Profile fetches the authenticated user's record using the bearer token.
func (c *Client) Profile(ctx context.Context) (*goSession.UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: profile: status %d", goSession.ErrAuthorizationRejected, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: profile: unexpected status %d", goSession.ErrNetworkFailure, resp.StatusCode)
	}

	var decoded wireProfile
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode profile response: %v", goSession.ErrNetworkFailure, err)
	}

	return decoded.toProfile(), nil
}

// Logout asks the server to invalidate the renewal cookie. Any 2xx counts as
// success; the engine tears local state down regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: logout: unexpected status %d", goSession.ErrNetworkFailure, resp.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, bearer bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", goSession.ErrNetworkFailure, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", goSession.ErrNetworkFailure, method, path, err)
	}
	return resp, nil
}

func serverMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return "invalid credentials"
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
}

package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client is the production [API] implementation over JSON/HTTPS.
// The zero value is not usable; construct with [NewClient].
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the API served at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "sessionkit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// do issues one JSON request. A non-empty bearer is sent as an Authorization
// header. out may be nil for endpoints with empty success bodies.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrNetwork, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		mapped := mapErrorCode(eb.Error, resp.StatusCode)
		if eb.Message != "" {
			return fmt.Errorf("%w: %s", mapped, eb.Message)
		}
		return mapped
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}

// RequestMagicLink asks the server to mail a one-time login link. The server
// responds identically whether or not the address belongs to an account.
func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	in := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, http.MethodPost, "/auth/magic-link", "", in, nil)
}

// VerifyMagicLink exchanges a one-time link token. The result carries either
// durable credentials or a pending-session identifier demanding a second
// factor.
func (c *Client) VerifyMagicLink(ctx context.Context, token string, device DeviceDescriptor) (*VerifyResult, error) {
	in := struct {
		Token  string           `json:"token"`
		Device DeviceDescriptor `json:"device"`
	}{Token: token, Device: device}
	var out VerifyResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BeginSecondFactorSetup fetches TOTP provisioning data for a pending session.
func (c *Client) BeginSecondFactorSetup(ctx context.Context, pendingSession string) (*SecondFactorProvision, error) {
	in := struct {
		PendingSession string `json:"pending_session_id"`
	}{PendingSession: pendingSession}
	var out SecondFactorProvision
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/setup", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteSecondFactorSetup proves possession of a freshly provisioned secret
// and exchanges the pending session for durable credentials.
func (c *Client) CompleteSecondFactorSetup(ctx context.Context, pendingSession, code string, backupAck bool) (*Grant, error) {
	in := struct {
		PendingSession string `json:"pending_session_id"`
		Code           string `json:"code"`
		BackupAck      bool   `json:"backup_ack"`
	}{PendingSession: pendingSession, Code: code, BackupAck: backupAck}
	var out Grant
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/verify-setup", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteSecondFactor exchanges a pending session plus a time-based or
// backup code for durable credentials.
func (c *Client) CompleteSecondFactor(ctx context.Context, pendingSession, code string) (*Grant, error) {
	in := struct {
		PendingSession string `json:"pending_session_id"`
		Code           string `json:"code"`
	}{PendingSession: pendingSession, Code: code}
	var out Grant
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/complete", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh credential for a new access credential. The result
// includes a replacement refresh credential only when the server rotated it.
func (c *Client) Refresh(ctx context.Context, refreshToken string, device DeviceDescriptor) (*RefreshResult, error) {
	in := struct {
		RefreshToken string           `json:"refresh_credential"`
		Device       DeviceDescriptor `json:"device"`
	}{RefreshToken: refreshToken, Device: device}
	var out RefreshResult
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Revoke invalidates one refresh credential server-side.
func (c *Client) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	in := struct {
		RefreshToken string `json:"refresh_credential"`
	}{RefreshToken: refreshToken}
	return c.do(ctx, http.MethodPost, "/auth/revoke", accessToken, in, nil)
}

// RevokeAll invalidates every session belonging to the authenticated user.
func (c *Client) RevokeAll(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/revoke-all", accessToken, nil, nil)
}

// ListDevices returns the registered devices for the authenticated user.
func (c *Client) ListDevices(ctx context.Context, accessToken string) ([]Device, error) {
	var out struct {
		Devices []Device `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/devices", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// RenameDevice updates a device's display name.
func (c *Client) RenameDevice(ctx context.Context, accessToken, deviceID, name string) (*Device, error) {
	in := struct {
		Name string `json:"name"`
	}{Name: name}
	var out Device
	if err := c.do(ctx, http.MethodPatch, "/auth/devices/"+url.PathEscape(deviceID), accessToken, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveDevice deletes a device registration, ending its trust window.
func (c *Client) RemoveDevice(ctx context.Context, accessToken, deviceID string) error {
	return c.do(ctx, http.MethodDelete, "/auth/devices/"+url.PathEscape(deviceID), accessToken, nil, nil)
}

var _ API = (*Client)(nil)

// Package backend talks to the site's REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/handshake"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/models"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PathVerifyGoogle    = "/api/auth/google/verify"
	PathProfile         = "/api/user/profile"
	PathAccount         = "/api/user/account"
	PathForgotPassword  = "/api/auth/forgot-password"
	PathResetPassword   = "/api/auth/reset-password"
	PathCheckResetToken = "/api/auth/check-reset-token"

	maxErrorBody = 64 << 10
)

// APIError is any non 2xx answer. Message comes from the JSON message field
// when the backend sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	verify  *http.Client
	bus     *events.Bus
	logger  *slog.Logger
	now     func() time.Time
}

var _ handshake.Verifier = (*Client)(nil)

// NewClient returns a client for baseURL. httpClient should already carry the
// session transports.
func NewClient(baseURL string, httpClient *http.Client, bus *events.Bus, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url must use http or https, got %q", u.Scheme)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		verify:  httpClient,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// UseVerifyClient sends Google token verification through h instead of the
// session client. A rejected sign in must not count as a rejected session.
func (c *Client) UseVerifyClient(h *http.Client) {
	if h != nil {
		c.verify = h
	}
}

type verifyRequest struct {
	IDToken string `json:"idToken"`
}

// VerifyGoogleToken asks the backend whether idToken may start a session. A
// 4xx answer is an invalid result, not an error.
func (c *Client) VerifyGoogleToken(ctx context.Context, idToken string) (*handshake.VerifyResult, error) {
	var result handshake.VerifyResult
	err := c.doWith(ctx, c.verify, "verify_google", http.MethodPost, PathVerifyGoogle, verifyRequest{IDToken: idToken}, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return &handshake.VerifyResult{Valid: false, Message: apiErr.Message}, nil
		}
		return nil, err
	}

	return &result, nil
}

func (c *Client) Verify(ctx context.Context, idToken string) (*handshake.VerifyResult, error) {
	return c.VerifyGoogleToken(ctx, idToken)
}

func (c *Client) Profile(ctx context.Context) (*models.UserSummary, error) {
	var user models.UserSummary
	if err := c.do(ctx, "profile", http.MethodGet, PathProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, "forgot_password", http.MethodPost, PathForgotPassword, map[string]string{"email": email}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, "reset_password", http.MethodPost, PathResetPassword, map[string]string{
		"token":    resetToken,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

type ResetTokenStatus struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func (c *Client) CheckResetToken(ctx context.Context, resetToken string) (*ResetTokenStatus, error) {
	var status ResetTokenStatus
	path := PathCheckResetToken + "/" + url.PathEscape(resetToken)
	if err := c.do(ctx, "check_reset_token", http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DeleteAccount removes the signed in account and announces it on the bus.
func (c *Client) DeleteAccount(ctx context.Context, userID string) error {
	if err := c.do(ctx, "delete_account", http.MethodDelete, PathAccount, nil, nil); err != nil {
		return err
	}

	c.logger.Info("Account deleted", "user_id", userID)
	if c.bus != nil {
		events.Publish(c.bus, events.UserDeleted, events.UserDeletedNotice{
			UserID: userID,
			At:     c.now(),
		})
	}

	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	return c.doWith(ctx, c.http, operation, method, path, body, out)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, operation, method, path string, body, out any) error {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload messageResponse
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

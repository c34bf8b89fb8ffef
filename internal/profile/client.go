package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBodyBytes caps how much of an error response body is kept for
// diagnostics.
const maxErrorBodyBytes = 4 << 10

// SessionInfo identifies the authenticated user behind an access token.
type SessionInfo struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// Client talks to the hosted auth/profile backend. The core consumes three
// operations: verify the current session, fetch a profile, update a profile.
// Access tokens are supplied per call; the client holds no session state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     *apperrors.Logger
}

// NewClient creates a backend client from configuration. Returns nil when
// the backend integration is disabled.
func NewClient(cfg *config.BackendConfig, logger *apperrors.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"Backend base URL is not configured", nil)
	}
	if cfg.AnonKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"Backend anon key is not configured", nil)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		anonKey: cfg.AnonKey,
		logger:  logger,
	}, nil
}

// VerifySession resolves an access token to the user it belongs to.
func (c *Client) VerifySession(ctx context.Context, accessToken string) (*SessionInfo, error) {
	if accessToken == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeSessionInvalid,
			"No access token supplied", nil)
	}

	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeSessionInvalid,
			"Session is invalid or expired", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("session verification", resp)
	}

	var info SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.NewNetworkError(apperrors.ErrCodeSessionInvalid,
			"Session verification response is not valid JSON", err)
	}
	if info.UserID == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeSessionInvalid,
			"Session verification returned no user", nil)
	}

	return &info, nil
}

// FetchProfile loads the career profile for a user id.
func (c *Client) FetchProfile(ctx context.Context, accessToken, userID string) (*types.Profile, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeMissingField,
			"User id is required to fetch a profile", nil)
	}

	path := "/rest/v1/profiles?id=eq." + url.QueryEscape(userID)
	resp, err := c.do(ctx, http.MethodGet, path, accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(apperrors.ErrCodeProfileFetch,
			fmt.Sprintf("Profile fetch returned status %d", resp.StatusCode), nil)
	}

	var rows []types.Profile
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, apperrors.NewNetworkError(apperrors.ErrCodeProfileFetch,
			"Profile response is not valid JSON", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNetworkError(apperrors.ErrCodeProfileFetch,
			"No profile exists for this user", nil)
	}

	return &rows[0], nil
}

// UpdateProfile replaces the stored profile fields for a user id.
func (c *Client) UpdateProfile(ctx context.Context, accessToken, userID string, profile *types.Profile) error {
	if userID == "" {
		return apperrors.NewValidationError(apperrors.ErrCodeMissingField,
			"User id is required to update a profile", nil)
	}
	if profile == nil {
		return apperrors.NewValidationError(apperrors.ErrCodeMissingField,
			"A profile body is required", nil)
	}

	body, err := json.Marshal(profile)
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeProfileUpdate,
			"Failed to encode profile", err)
	}

	path := "/rest/v1/profiles?id=eq." + url.QueryEscape(userID)
	resp, err := c.do(ctx, http.MethodPatch, path, accessToken, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.NewNetworkError(apperrors.ErrCodeProfileUpdate,
			fmt.Sprintf("Profile update returned status %d", resp.StatusCode), nil)
	}

	c.logger.Debug("Profile updated", "user_id", userID)
	return nil
}

// do performs one backend request with the standard header set.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.NewInternalError(apperrors.ErrCodeInvalidRequest,
			"Failed to build backend request", err)
	}

	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(apperrors.ErrCodeNetworkFailure,
			"Backend request failed before receiving a response", err)
	}
	return resp, nil
}

func (c *Client) unexpectedStatus(operation string, resp *http.Response) error {
	errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	c.logger.Warn("Backend returned unexpected status",
		"operation", operation,
		"status", resp.StatusCode)
	return apperrors.NewHTTPError(resp.StatusCode, string(errBody))
}

package enrollsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("enroll api: %d %s", e.StatusCode, e.Detail)
}

// Client talks to the enrollment service. The session cookie lives in the
// client's cookie jar; the authorization token is held in memory and
// attached to every request after login. The zero value is not usable, use
// NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Token returns the current authorization token, empty before login.
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Detail: apiErr.Detail}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Setup bootstraps the first administrator account.
func (c *Client) Setup(ctx context.Context, name, password string) error {
	return c.do(ctx, http.MethodPost, "/v1/users/setup", SetupRequest{Name: name, Password: password}, nil)
}

// Login authenticates and stores the resulting credentials on the client.
func (c *Client) Login(ctx context.Context, name, password, otpCode string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/v1/users/login", LoginRequest{
		Name: name, Password: password, OTPCode: otpCode,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Refresh trades the session cookie for a fresh authorization token.
func (c *Client) Refresh(ctx context.Context) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPatch, "/v1/users/login", nil, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Logout revokes the session and clears the client's credentials.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/v1/users/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Applicants lists admission-record applicant names.
func (c *Client) Applicants(ctx context.Context, nameFilter string) ([]string, error) {
	path := "/v1/enrollments/applicants"
	if nameFilter != "" {
		path += "?name=" + nameFilter
	}
	var out []string
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EntryInfo fetches the placement picture for an applicant and course.
func (c *Client) EntryInfo(ctx context.Context, applicant, cpf, course string) (*EntryInfoResponse, error) {
	var out EntryInfoResponse
	err := c.do(ctx, http.MethodPost, "/v1/enrollments/entry-info", map[string]string{
		"applicant": applicant,
		"cpf":       cpf,
		"course":    course,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll submits an enrollment during the open window.
func (c *Client) Enroll(ctx context.Context, req EnrollRequest) (*EnrollmentResponse, error) {
	var out EnrollmentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/enrollments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez checks service liveness.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz checks service readiness including its dependencies.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Package upstream talks to the external collaborators: the identity
// service under /accounts/ and the report-generation service under /api/.
// Both are opaque; only the shapes the workflow depends on are modeled.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"inspectoriq/internal/model"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{}}
}

type signInWire struct {
	Token string `json:"token"`
	User  struct {
		ID        int    `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user"`
}

// SignIn exchanges credentials for a bearer token and profile. The display
// name is derived by joining first and last name, "No Name" when both are
// empty.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var wire signInWire
	if err := c.doJSON(ctx, "POST", "/accounts/signin/", "", body, &wire); err != nil {
		return nil, err
	}
	return &model.Session{
		ID:    wire.User.ID,
		Token: wire.Token,
		Name:  model.DisplayName(wire.User.FirstName, wire.User.LastName),
		Email: wire.User.Email,
	}, nil
}

// SignUp registers a new account. The full name is split on the first space
// into first and last name, matching what the service expects.
func (c *Client) SignUp(ctx context.Context, firstName, lastName, email, password string) error {
	body := map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}
	return c.doJSON(ctx, "POST", "/accounts/signup/", "", body, nil)
}

// UpdateAccount pushes profile/password changes for the signed-in user.
func (c *Client) UpdateAccount(ctx context.Context, token string, fields map[string]string) error {
	return c.doJSON(ctx, "PUT", "/accounts/update/", token, fields, nil)
}

// GenerateReport posts an assembled multipart draft to the given
// template-specific endpoint. No client timeout is applied: a hung request
// stays in flight until the transport itself gives up.
func (c *Client) GenerateReport(ctx context.Context, token, endpoint, contentType string, form io.Reader) (*model.GenerateResult, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generate %s: status %d: %s", endpoint, resp.StatusCode, data)
	}

	var result model.GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	if result.S3URL == "" {
		return nil, fmt.Errorf("generate %s: response missing s3_url", endpoint)
	}
	return &result, nil
}

// ListReports fetches the user's reports. The server is the source of truth;
// nothing is cached across calls.
func (c *Client) ListReports(ctx context.Context, token string, userID int) ([]model.ReportSummary, error) {
	var reports []model.ReportSummary
	path := fmt.Sprintf("/api/user/%d/reports/", userID)
	if err := c.doJSON(ctx, "GET", path, token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// DeleteReport removes a report server-side. Callers drop the row from their
// view only when this succeeds.
func (c *Client) DeleteReport(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, "DELETE", fmt.Sprintf("/api/delete-report/%d/", id), token, nil, nil)
}

// FetchDocument streams a stored document, used by the download proxy. The
// caller owns the returned body.
func (c *Client) FetchDocument(ctx context.Context, docURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", docURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch document: status %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}

	if out != nil {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
	}
	return nil
}

// Package cosense is a minimal client for the Cosense (Scrapbox) page
// API, covering the existence probes and the two-phase page import the
// sync pipeline needs.
package cosense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	syncdomain "mailwiki-backend/internal/sync/domain"
)

const defaultBaseURL = "https://scrapbox.io"

// Client implements domain.Destination against a Cosense instance.
// All calls authenticate with the user's connect.sid session cookie.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL points the client at a non-default instance.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path, sessionID string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: "connect.sid", Value: sessionID})
	return req, nil
}

// PageExists probes the page text endpoint. A 200 means the page
// exists, a 404 means it does not. Other statuses are logged and
// treated as "does not exist" so a flaky probe never blocks an import.
func (c *Client) PageExists(ctx context.Context, sessionID, project, title string) (bool, error) {
	path := fmt.Sprintf("/api/pages/%s/%s/text", url.PathEscape(project), url.PathEscape(title))
	req, err := c.newRequest(ctx, http.MethodGet, path, sessionID, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("unable to probe page %q: %w", title, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		log.Printf("[Cosense] unexpected status %d probing page %q", resp.StatusCode, title)
		return false, nil
	}
}

// PageHasContent reports whether the page carries any description
// lines. Pages created as empty links have none and are safe to
// overwrite.
func (c *Client) PageHasContent(ctx context.Context, sessionID, project, title string) (bool, error) {
	path := fmt.Sprintf("/api/pages/%s/%s", url.PathEscape(project), url.PathEscape(title))
	req, err := c.newRequest(ctx, http.MethodGet, path, sessionID, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("unable to fetch page %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d fetching page %q", resp.StatusCode, title)
	}

	var page struct {
		Descriptions []string `json:"descriptions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return false, fmt.Errorf("unable to decode page %q: %w", title, err)
	}
	return len(page.Descriptions) > 0, nil
}

// csrfToken fetches the token the import endpoints require. A failure
// here almost always means the session cookie is stale.
func (c *Client) csrfToken(ctx context.Context, sessionID string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/users/me", sessionID, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", syncdomain.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d from users/me", syncdomain.ErrAuth, resp.StatusCode)
	}

	var me struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("%w: %v", syncdomain.ErrAuth, err)
	}
	if me.CSRFToken == "" {
		return "", fmt.Errorf("%w: empty csrf token", syncdomain.ErrAuth)
	}
	return me.CSRFToken, nil
}

// ImportPage stages the page as an import file and then commits the
// import. The page is only visible after the commit succeeds.
func (c *Client) ImportPage(ctx context.Context, sessionID, project string, page *syncdomain.Page) error {
	token, err := c.csrfToken(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := c.stageImport(ctx, sessionID, project, token, page); err != nil {
		return err
	}
	return c.commitImport(ctx, sessionID, project, token)
}

func (c *Client) stageImport(ctx context.Context, sessionID, project, token string, page *syncdomain.Page) error {
	payload, err := json.Marshal(map[string]any{
		"pages": []syncdomain.Page{*page},
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="import-file"; filename="import.json"`)
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(payload); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/page-data/import/%s.json", url.PathEscape(project))
	req, err := c.newRequest(ctx, http.MethodPost, path, sessionID, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-CSRF-TOKEN", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unable to stage import: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &syncdomain.ImportError{Phase: syncdomain.PhaseStage, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) commitImport(ctx context.Context, sessionID, project, token string) error {
	path := fmt.Sprintf("/api/page-data/import-finish/%s.json", url.PathEscape(project))
	req, err := c.newRequest(ctx, http.MethodPost, path, sessionID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-CSRF-TOKEN", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unable to commit import: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &syncdomain.ImportError{Phase: syncdomain.PhaseCommit, Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Message != "success" {
		return &syncdomain.ImportError{Phase: syncdomain.PhaseCommit, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

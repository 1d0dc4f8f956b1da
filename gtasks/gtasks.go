// Package gtasks is a minimal Google Tasks REST client covering what a sync
// run needs: list open task titles, mark titles complete, and move a task
// between lists. Task lists are addressed by display title, not list ID.
package gtasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cartsync"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL    string
	token      string
	httpClient doer
}

func NewClient(cfg cartsync.TasksConfig, httpClient doer) *Client {
	base := strings.TrimSuffix(cfg.BaseEndpoint, "/")
	if base == "" {
		base = "https://tasks.googleapis.com"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    base,
		token:      cfg.AccessToken,
		httpClient: httpClient,
	}
}

type taskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// FetchOpenItems returns the titles of every needsAction task on the named
// list, in list order across pages.
func (c *Client) FetchOpenItems(ctx context.Context, listName string) ([]string, error) {
	listID, err := c.findListID(ctx, listName)
	if err != nil {
		return nil, err
	}

	tasks, err := c.openTasks(ctx, listID)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		titles = append(titles, t.Title)
	}
	return titles, nil
}

// MarkComplete marks the first open task with the given title as completed.
func (c *Client) MarkComplete(ctx context.Context, listName, title string) error {
	listID, taskID, err := c.findTask(ctx, listName, title)
	if err != nil {
		return err
	}

	body := map[string]string{"status": "completed"}
	path := fmt.Sprintf("/tasks/v1/lists/%s/tasks/%s", url.PathEscape(listID), url.PathEscape(taskID))
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// MoveItem copies a task title from one list to another, then deletes the
// original. Insert happens first so a failure can only duplicate, never lose.
func (c *Client) MoveItem(ctx context.Context, title, fromList, toList string) error {
	fromID, taskID, err := c.findTask(ctx, fromList, title)
	if err != nil {
		return err
	}
	toID, err := c.findListID(ctx, toList)
	if err != nil {
		return err
	}

	insertPath := fmt.Sprintf("/tasks/v1/lists/%s/tasks", url.PathEscape(toID))
	if err := c.do(ctx, http.MethodPost, insertPath, map[string]string{"title": title}, nil); err != nil {
		return fmt.Errorf("failed to insert %q into list %q: %w", title, toList, err)
	}

	deletePath := fmt.Sprintf("/tasks/v1/lists/%s/tasks/%s", url.PathEscape(fromID), url.PathEscape(taskID))
	if err := c.do(ctx, http.MethodDelete, deletePath, nil, nil); err != nil {
		return fmt.Errorf("failed to delete %q from list %q: %w", title, fromList, err)
	}
	return nil
}

func (c *Client) findListID(ctx context.Context, listName string) (string, error) {
	pageToken := ""
	for {
		var page struct {
			Items         []taskList `json:"items"`
			NextPageToken string     `json:"nextPageToken"`
		}
		path := "/tasks/v1/users/@me/lists"
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return "", err
		}

		for _, l := range page.Items {
			if strings.EqualFold(l.Title, listName) {
				return l.ID, nil
			}
		}

		if page.NextPageToken == "" {
			return "", fmt.Errorf("task list %q not found", listName)
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) openTasks(ctx context.Context, listID string) ([]task, error) {
	var out []task
	pageToken := ""
	for {
		var page struct {
			Items         []task `json:"items"`
			NextPageToken string `json:"nextPageToken"`
		}
		path := fmt.Sprintf("/tasks/v1/lists/%s/tasks?showCompleted=false", url.PathEscape(listID))
		if pageToken != "" {
			path += "&pageToken=" + url.QueryEscape(pageToken)
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}

		for _, t := range page.Items {
			if t.Status == "completed" {
				continue
			}
			out = append(out, t)
		}

		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) findTask(ctx context.Context, listName, title string) (listID, taskID string, err error) {
	listID, err = c.findListID(ctx, listName)
	if err != nil {
		return "", "", err
	}
	tasks, err := c.openTasks(ctx, listID)
	if err != nil {
		return "", "", err
	}
	for _, t := range tasks {
		if strings.EqualFold(strings.TrimSpace(t.Title), strings.TrimSpace(title)) {
			return listID, t.ID, nil
		}
	}
	return "", "", fmt.Errorf("task %q not found on list %q", title, listName)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return cartsync.NewAuthError("Google Tasks", fmt.Errorf("%s %s: %s", method, path, resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("google tasks request failed: %s %s: %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode google tasks response: %w", err)
		}
	}
	return nil
}

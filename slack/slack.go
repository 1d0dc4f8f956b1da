// Package slack posts run outcomes to a Slack webhook. Notification is
// best-effort; a failed post never changes the run result.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cartsync/engine"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostRunSummary posts a compact one-message summary of a run. Terminal
// output carries the detail; Slack gets the headline numbers.
func (c *Client) PostRunSummary(ctx context.Context, channel string, result *engine.RunResult) error {
	return c.PostMessage(ctx, channel, RunSummary(result))
}

// RunSummary renders the one-line-per-fact Slack text for a run result.
func RunSummary(result *engine.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cart sync for %q finished: %s", result.ListName, result.State)

	switch result.State {
	case engine.StateBlocked:
		fmt.Fprintf(&b, "\n%d item(s) need a product mapping:", len(result.Blocked))
		for _, r := range result.Blocked {
			fmt.Fprintf(&b, "\n• %s", r.Item.Normalized)
		}
	case engine.StateDone:
		fmt.Fprintf(&b, "\nAdds executed: %d", len(result.Executed))
		if result.Audit != nil {
			fmt.Fprintf(&b, "\nFulfilled: %d, missing: %d, unexpected in cart: %d",
				len(result.Audit.Fulfilled), len(result.Audit.Missing), len(result.Audit.Unexpected))
		}
		b.WriteString("\nCart is staged; checkout is yours.")
	}
	return b.String()
}

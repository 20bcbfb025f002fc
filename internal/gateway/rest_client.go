package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound reports that the target channel or message no longer exists.
var ErrNotFound = errors.New("gateway: not found")

const defaultRequestTimeout = 10 * time.Second

// RestClient talks to the platform's HTTP API with a bot token. Only the
// handful of endpoints behind the Gateway interface are implemented.
type RestClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewRestClient(baseURL, token string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

type messagePayload struct {
	Content string `json:"content"`
}

type messageResponse struct {
	ID string `json:"id"`
}

type channelResponse struct {
	ID string `json:"id"`
}

func (c *RestClient) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID),
		messagePayload{Content: content}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *RestClient) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	return c.do(ctx, http.MethodPatch,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID),
		messagePayload{Content: content}, nil)
}

func (c *RestClient) SendDirect(ctx context.Context, userID, content string) error {
	// The platform models DMs as a per-user channel created on demand.
	var ch channelResponse
	err := c.do(ctx, http.MethodPost, "/users/@me/channels",
		map[string]string{"recipient_id": userID}, &ch)
	if err != nil {
		return err
	}
	_, err = c.SendMessage(ctx, ch.ID, content)
	return err
}

type createChannelPayload struct {
	Name      string   `json:"name"`
	ParentID  string   `json:"parent_id,omitempty"`
	ViewerIDs []string `json:"viewer_ids,omitempty"`
}

func (c *RestClient) CreateChannel(ctx context.Context, req CreateChannelRequest) (string, error) {
	var resp channelResponse
	err := c.do(ctx, http.MethodPost, "/channels", createChannelPayload{
		Name:      req.Name,
		ParentID:  req.ParentID,
		ViewerIDs: req.ViewerIDs,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *RestClient) DeleteChannel(ctx context.Context, channelID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%s", channelID), nil, nil)
}

func (c *RestClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

var _ Gateway = (*RestClient)(nil)

// Package captioning produces image captions through the captioning sidecar.
package captioning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/mltransport"
)

// ErrEmptyCaption means the backend answered without a caption.
var ErrEmptyCaption = errors.New("empty caption")

// CaptionRequest is the body of POST /caption.
type CaptionRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt,omitempty"`
}

// CaptionResponse is the sidecar answer.
type CaptionResponse struct {
	Caption      string `json:"caption"`
	ModelVersion string `json:"model_version,omitempty"`
}

// Client is an HTTP client for the captioning sidecar.
type Client struct {
	transport *mltransport.Client
}

// NewClient creates a captioning client on top of transport.
func NewClient(transport *mltransport.Client) *Client {
	return &Client{transport: transport}
}

// Caption returns an unprompted caption.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	return c.CaptionWithPrompt(ctx, image, "")
}

// CaptionWithPrompt returns a caption conditioned on prompt.
func (c *Client) CaptionWithPrompt(ctx context.Context, image []byte, prompt string) (string, error) {
	req := &CaptionRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Prompt: prompt,
	}
	var resp CaptionResponse
	if err := c.transport.PostJSON(ctx, "/caption", req, &resp); err != nil {
		return "", fmt.Errorf("caption: %w", err)
	}

	caption := strings.TrimSpace(resp.Caption)
	if caption == "" {
		return "", ErrEmptyCaption
	}
	return caption, nil
}

// Health checks that the sidecar is reachable.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.transport.Health(ctx); err != nil {
		return fmt.Errorf("captioning health: %w", err)
	}
	return nil
}

// Package transcription converts voice complaints to text through the
// speech-to-text sidecar.
package transcription

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/media"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/mltransport"
)

// TranscribeRequest is the body of POST /transcribe.
type TranscribeRequest struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mime_type,omitempty"`
}

// TranscribeResponse is the sidecar answer.
type TranscribeResponse struct {
	Text         string `json:"text"`
	Language     string `json:"language,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
}

// Client is an HTTP client for the speech-to-text sidecar.
type Client struct {
	transport *mltransport.Client
}

// NewClient creates a transcription client on top of transport.
func NewClient(transport *mltransport.Client) *Client {
	return &Client{transport: transport}
}

// Transcribe returns the transcript of audio. Silence yields "".
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req := &TranscribeRequest{
		Audio:    base64.StdEncoding.EncodeToString(audio),
		MIMEType: media.DetectMIME(audio),
	}
	var resp TranscribeResponse
	if err := c.transport.PostJSON(ctx, "/transcribe", req, &resp); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Health checks that the sidecar is reachable.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.transport.Health(ctx); err != nil {
		return fmt.Errorf("transcription health: %w", err)
	}
	return nil
}

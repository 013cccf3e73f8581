// Package transcribe talks to the external audio-to-MIDI transcription
// service. The service owns the actual transcription algorithm; this
// client only uploads audio and hands back the MIDI bytes or the
// service's error kind.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/sergiecode/audio-to-sheet/internal/errors"
)

// DefaultTimeout bounds a single transcription call. There is no retry:
// callers cancel via ctx and try again themselves if they want to.
const DefaultTimeout = 3 * time.Minute

// errorPayload is the service's structured error body.
type errorPayload struct {
	Error string `json:"error"`
}

// Client is an HTTP client for the transcription service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads an audio file and returns the resulting MIDI bytes.
// Service-reported failures map to the sentinel errors in
// internal/errors; transport failures wrap ErrServiceDown.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrServiceDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.serviceError(resp)
	}

	midi, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read MIDI response: %w", err)
	}
	if len(midi) == 0 {
		return nil, fmt.Errorf("%w: empty MIDI response", apperrors.ErrServiceInternal)
	}
	return midi, nil
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrServiceDown, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", apperrors.ErrServiceDown, resp.StatusCode)
	}
	return nil
}

// serviceError maps the service's error-kind string to a sentinel error.
func (c *Client) serviceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
		return fmt.Errorf("%w: status %d", apperrors.ErrServiceInternal, resp.StatusCode)
	}

	switch payload.Error {
	case "File too large":
		return apperrors.ErrFileTooLarge
	case "File type not supported":
		return apperrors.ErrUnsupportedFormat
	case "No audio file provided":
		return apperrors.ErrNoAudioFile
	case "Internal server error":
		return apperrors.ErrServiceInternal
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrServiceInternal, payload.Error)
	}
}

// Client for a running playlift server's HTTP API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// TransferPayload is the JSON body of a submit request. Source and Destination accept raw
// playlist ids or share links.
type TransferPayload struct {
	SessionID   string `json:"session_id"`
	Direction   string `json:"direction"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
}

// Request converts the payload into a validated [models.TransferRequest].
func (p TransferPayload) Request() (models.TransferRequest, error) {
	dir := models.Direction(p.Direction)
	if !dir.Valid() {
		return models.TransferRequest{}, fmt.Errorf("%w: unknown direction %q", shared.ErrInvalidInput, p.Direction)
	}

	src, err := ParsePlaylistRef(dir.Source(), p.Source)
	if err != nil {
		return models.TransferRequest{}, err
	}
	dst, err := ParsePlaylistRef(dir.Destination(), p.Destination)
	if err != nil {
		return models.TransferRequest{}, err
	}

	req := models.TransferRequest{SessionID: p.SessionID, Direction: dir, Source: src, Destination: dst}
	if err := req.Validate(); err != nil {
		return models.TransferRequest{}, err
	}
	return req, nil
}

// APIService talks to the transfer endpoints of a playlift server.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API client for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{baseURL: baseURL, httpClient: client}
}

// apiError is the error body returned by the server.
type apiError struct {
	Error     string      `json:"error"`
	ErrorType shared.Kind `json:"error_type"`
}

// Submit starts a transfer and returns its job id.
func (a *APIService) Submit(ctx context.Context, payload TransferPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/transfers", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

// Status fetches the current view of a job.
func (a *APIService) Status(ctx context.Context, jobID string) (*models.StatusView, error) {
	var view models.StatusView
	if err := a.do(ctx, http.MethodGet, "/api/transfers/"+url.PathEscape(jobID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *APIService) do(ctx context.Context, method, path string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			if e.ErrorType == shared.KindValidation {
				return fmt.Errorf("%w: %s", shared.ErrInvalidInput, e.Error)
			}
			return &shared.UpstreamError{Platform: "playlift", Status: resp.StatusCode, Body: e.Error}
		}
		return &shared.UpstreamError{Platform: "playlift", Status: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

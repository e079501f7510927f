// Package classify wraps the external nudity-classification service and the
// decision rule applied to its scores.
//
// The gateway is strictly fail-open: any network error, timeout, or non-200
// response yields StatusFailure, and failed results never flag a message.
// Moderation must not block on classifier availability.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tinyland-inc/slacksweep/pkg/logger"
	"github.com/tinyland-inc/slacksweep/pkg/metrics"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the normalized classifier verdict for one media reference.
type Result struct {
	ReferenceID string
	Score       float64
	Status      Status
}

// Checker is the classifier surface the dispatcher depends on.
type Checker interface {
	CheckURL(ctx context.Context, refID, mediaURL string) Result
	CheckBytes(ctx context.Context, refID, name string, data []byte) Result
}

// Client talks to the uploadfilter.io-style nudity endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type nudityResponse struct {
	Result struct {
		Value float64 `json:"value"`
	} `json:"result"`
}

// CheckURL submits a media URL by reference, without downloading it.
func (c *Client) CheckURL(ctx context.Context, refID, mediaURL string) Result {
	endpoint := c.baseURL + "/v1/nudity?" + url.Values{"url": {mediaURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return c.failure(refID, err)
	}
	req.Header.Set("apikey", c.apiKey)
	return c.do(refID, req)
}

// CheckBytes submits previously fetched file content as a multipart body.
func (c *Client) CheckBytes(ctx context.Context, refID, name string, data []byte) Result {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return c.failure(refID, err)
	}
	if _, err := part.Write(data); err != nil {
		return c.failure(refID, err)
	}
	if err := w.Close(); err != nil {
		return c.failure(refID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/nudity", &body)
	if err != nil {
		return c.failure(refID, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(refID, req)
}

func (c *Client) do(refID string, req *http.Request) Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(refID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return c.failure(refID, fmt.Errorf("classifier returned status %d", resp.StatusCode))
	}

	var nr nudityResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return c.failure(refID, fmt.Errorf("decoding classifier response: %w", err))
	}

	metrics.MediaClassified.Inc()
	return Result{ReferenceID: refID, Score: nr.Result.Value, Status: StatusSuccess}
}

func (c *Client) failure(refID string, err error) Result {
	metrics.ClassifierFailures.Inc()
	logger.WarnCF("classify", "Classifier call failed, treating as not flagged", map[string]any{
		"reference_id": refID,
		"error":        err.Error(),
	})
	return Result{ReferenceID: refID, Status: StatusFailure}
}

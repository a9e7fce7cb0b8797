package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Scorer is the narrow interface over an external model capability. A Scorer
// may fail or time out; callers are expected to substitute the dimension's
// neutral default, never to propagate the failure into the pipeline.
type Scorer interface {
	Score(ctx context.Context, model, text string) (*Result, error)
}

// Result is a single model inference outcome. Score is always populated;
// Label and Confidence are only set by classifier-style models.
type Result struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type scoreRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// Client scores text against a remote inference service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an inference client for the given endpoint. An empty token
// yields an unauthenticated client.
func New(ctx context.Context, baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("inference baseURL is required")
	}

	hc := &http.Client{Timeout: defaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: token,
		})
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = defaultTimeout
	}

	return &Client{baseURL: baseURL, http: hc}, nil
}

// Score submits text to the named model and returns its result.
func (c *Client) Score(ctx context.Context, model, text string) (*Result, error) {
	if model == "" {
		return nil, errors.New("model is required")
	}

	b, err := json.Marshal(scoreRequest{Model: model, Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal score request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create score request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to score with model %s", model)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		return nil, errors.Errorf("inference service returned %s: %s", res.Status, string(body))
	}

	var out Result
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "failed to decode score response")
	}

	return &out, nil
}

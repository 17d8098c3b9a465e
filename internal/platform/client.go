// Package platform is the gateway's client for the hiring platform API.
// The session controller and interview engine consume it only through their
// collaborator interfaces; everything transport-shaped lives here.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
)

// Client talks JSON over HTTP to the platform, injecting the candidate's
// bearer token on every request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client. baseURL is the platform API root without a
// trailing slash, token the candidate's access token.
func NewClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "platform_client").Logger(),
	}
}

// envelope mirrors the platform's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// FetchSession returns the candidate's assessment session for a job, or
// ErrNotFound when none exists yet.
func (c *Client) FetchSession(ctx context.Context, jobID, applicationID string) (*model.Session, error) {
	path := fmt.Sprintf("/candidate/jobs/%s/assessment?application_id=%s", jobID, url.QueryEscape(applicationID))
	var sess model.Session
	if err := c.do(ctx, http.MethodGet, path, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// FetchItems returns the question list and time budget for an assessment.
func (c *Client) FetchItems(ctx context.Context, jobID string, mode model.AssessmentMode) (*model.ItemSet, error) {
	path := fmt.Sprintf("/candidate/jobs/%s/items?mode=%s", jobID, url.QueryEscape(string(mode)))
	var set model.ItemSet
	if err := c.do(ctx, http.MethodGet, path, nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// SubmitItem sends one answer for scoring and returns the scoring record.
func (c *Client) SubmitItem(ctx context.Context, jobID string, itemID uuid.UUID, answer string) (*model.SubmissionRecord, error) {
	path := fmt.Sprintf("/candidate/jobs/%s/items/%s/submission", jobID, itemID)
	body := map[string]string{"answer": answer}
	var rec model.SubmissionRecord
	if err := c.do(ctx, http.MethodPost, path, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SubmitFinal sends the aptitude test's remaining answers as one batch.
func (c *Client) SubmitFinal(ctx context.Context, jobID string, answers []model.ItemAnswer) (*model.FinalResult, error) {
	path := fmt.Sprintf("/candidate/jobs/%s/final", jobID)
	body := map[string]any{"answers": answers}
	var res model.FinalResult
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FetchInterview returns the interview question sequence.
func (c *Client) FetchInterview(ctx context.Context, jobID, applicationID string) (*model.Interview, error) {
	path := fmt.Sprintf("/candidate/jobs/%s/interview?application_id=%s", jobID, url.QueryEscape(applicationID))
	var iv model.Interview
	if err := c.do(ctx, http.MethodGet, path, nil, &iv); err != nil {
		return nil, err
	}
	return &iv, nil
}

// SubmitInterviewAnswer posts one interview answer. Scoring and follow-up
// question generation happen asynchronously on the platform side.
func (c *Client) SubmitInterviewAnswer(ctx context.Context, jobID string, ordinal int, text string) error {
	path := fmt.Sprintf("/candidate/jobs/%s/interview/answers", jobID)
	body := map[string]any{"ordinal": ordinal, "text": text}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// do executes one request and decodes the envelope. Non-2xx responses map
// to the gateway error taxonomy: 404 → ErrNotFound, everything else →
// RemoteError carrying the platform's human-readable message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.RemoteError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, apperr.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := remoteMessage(raw)
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Str("message", msg).Msg("Platform request failed")
		return &apperr.RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	// Some endpoints return the payload bare, without the envelope.
	return json.Unmarshal(raw, out)
}

// remoteMessage extracts the platform's error message from a failed
// response, falling back to a generic one.
func remoteMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return "the assessment service rejected the request"
}

// Package composer talks to the external document-composition service. It
// submits job tickets, awaits synchronous completion and downloads the
// compressed output bundle.
package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/ticket"
)

// statusCompleted is the only vendor status treated as success.
const statusCompleted = "Completed"

// Options configures the client.
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
	// Timeout bounds the submit and download calls together. It must stay
	// under the hosting platform's own request-lifetime ceiling.
	Timeout time.Duration
}

// Client is the remote job client. It performs no retries and no breaker
// bookkeeping; the orchestrating service owns both.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	timeout    time.Duration
}

// NewClient builds a client from options, applying a 25 second default
// timeout.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		username:   opts.Username,
		password:   opts.Password,
		timeout:    timeout,
	}
}

type submitResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail"`
}

// SubmitAndFetch submits the ticket and, once the service reports it
// completed, downloads the raw output bundle. Both calls share one timeout.
// Timeouts surface as domain.ErrComposerTimeout so the gateway can answer
// with a dedicated timed-out response.
func (c *Client) SubmitAndFetch(ctx context.Context, t *ticket.JobTicket) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	job, err := c.submit(ctx, t)
	if err != nil {
		return nil, err
	}
	if job.Status != statusCompleted {
		return nil, &domain.JobIncompleteError{Status: job.Status, Detail: job.StatusDetail}
	}
	return c.download(ctx, job.JobID)
}

func (c *Client) submit(ctx context.Context, t *ticket.JobTicket) (*submitResponse, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("composer: encode ticket: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("composer: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify("submit", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("composer: submit: http %d", resp.StatusCode)
	}
	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("composer: decode submit response: %w", err)
	}
	if out.JobID == "" {
		return nil, errors.New("composer: submit response missing job id")
	}
	return &out, nil
}

func (c *Client) download(ctx context.Context, jobID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID+"/output", nil)
	if err != nil {
		return nil, fmt.Errorf("composer: build download request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify("download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("composer: download: http %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify("download", err)
	}
	return raw, nil
}

// classify separates timeouts from other transport failures.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("composer: %s: %w", op, domain.ErrComposerTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("composer: %s: %w", op, domain.ErrComposerTimeout)
	}
	return fmt.Errorf("composer: %s: %w", op, err)
}

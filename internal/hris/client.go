package hris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Employee is one record from the HRIS roster feed
type Employee struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	UnitID     string `json:"unit_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Active     bool   `json:"active"`
}

type employeePage struct {
	Employees []Employee `json:"employees"`
	NextPage  int        `json:"next_page"`
	Total     int        `json:"total"`
}

// Client fetches the employee roster from the HRIS API. Requests carry
// the API key and are retried with exponential backoff on network
// errors, 5xx responses, and 429s.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
	retryDelay time.Duration
}

// Options configures the HRIS client
type Options struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates an HRIS client with authentication and retry support
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("HRIS endpoint is required")
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	maxRetries := uint64(0)
	if opts.MaxRetries > 0 {
		maxRetries = uint64(opts.MaxRetries)
	}

	return &Client{
		endpoint:   opts.Endpoint,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxRetries: maxRetries,
		retryDelay: opts.RetryDelay,
	}, nil
}

// FetchEmployees pulls the full roster, following pagination until the
// feed is exhausted.
func (c *Client) FetchEmployees(ctx context.Context) ([]Employee, error) {
	var all []Employee
	page := 1

	for {
		batch, next, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if next <= page {
			break
		}
		page = next
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]Employee, int, error) {
	u := fmt.Sprintf("%s/employees?page=%d", c.endpoint, page)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryDelay
	bo.MaxInterval = 10 * c.retryDelay
	bo.MaxElapsedTime = 0

	result, err := backoff.RetryWithData(
		func() (*employeePage, error) { return c.doFetch(ctx, u) },
		backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx),
	)
	if err != nil {
		return nil, 0, err
	}
	return result.Employees, result.NextPage, nil
}

// doFetch performs one request. Transient failures return plain errors
// so the backoff loop retries them; everything else is marked permanent.
func (c *Client) doFetch(ctx context.Context, u string) (*employeePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HRIS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read HRIS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		apiErr := fmt.Errorf("HRIS API error: %s - %s", resp.Status, preview)
		if resp.StatusCode >= http.StatusInternalServerError ||
			resp.StatusCode == http.StatusTooManyRequests {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}

	var result employeePage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode HRIS response: %w", err))
	}

	return &result, nil
}

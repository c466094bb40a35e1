package absence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/username/remote-work-bot/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://app.absence.io/api/v2"

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second

	lookupLimit = 100
)

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client represents absence.io API client
type Client struct {
	baseURL    string
	signer     *HawkSigner
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient creates a new absence.io API client.
// Lookups make up to retries attempts, 0 or 1 meaning a single one; absence creation
// is always attempted once.
func NewClient(baseURL string, signer *HawkSigner, timeout time.Duration, retries int, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 1 {
		retries = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries:    retries,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
}

// FindUserByEmail returns the user with the given email or ErrNotFound
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	req := listRequest{
		Limit:  lookupLimit,
		Filter: map[string]interface{}{"email": email},
	}

	var resp listResponse[User]
	if err := c.doRequest(ctx, http.MethodPost, "/users", req, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	for i := range resp.Data {
		if strings.EqualFold(resp.Data[i].Email, email) {
			user := resp.Data[i]
			c.logger.Info("User identified",
				zap.String("id", user.ID),
				zap.String("email", user.Email))
			return &user, nil
		}
	}

	return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
}

// FindReasonByName returns the reason with the given name or ErrNotFound
func (c *Client) FindReasonByName(ctx context.Context, name string) (*Reason, error) {
	req := listRequest{
		Limit:  lookupLimit,
		Filter: map[string]interface{}{"name": name},
	}

	var resp listResponse[Reason]
	if err := c.doRequest(ctx, http.MethodPost, "/reasons", req, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to retrieve reasons: %w", err)
	}

	for i := range resp.Data {
		if resp.Data[i].Name == name {
			reason := resp.Data[i]
			c.logger.Debug("Reason found",
				zap.String("id", reason.ID),
				zap.String("name", reason.Name))
			return &reason, nil
		}
	}

	return nil, fmt.Errorf("reason %q: %w", name, ErrNotFound)
}

// QueryAbsences retrieves one page of absences matching the query
func (c *Client) QueryAbsences(ctx context.Context, q AbsenceQuery) ([]Absence, error) {
	req := listRequest{
		Skip:  q.Skip,
		Limit: q.Limit,
		Filter: map[string]interface{}{
			"assignedToId": q.AssignedToID,
			"start": map[string]string{
				"$gte": dateutil.FormatISO8601(q.From.UTC()),
				"$lt":  dateutil.FormatISO8601(q.To.UTC()),
			},
		},
	}

	var resp listResponse[Absence]
	if err := c.doRequest(ctx, http.MethodPost, "/absences", req, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to retrieve absences: %w", err)
	}

	c.logger.Debug("Absences page retrieved",
		zap.String("assigned_to", q.AssignedToID),
		zap.Int("skip", q.Skip),
		zap.Int("limit", q.Limit),
		zap.Int("count", len(resp.Data)),
		zap.Int("total_count", resp.TotalCount))

	return resp.Data, nil
}

// CreateAbsence creates a new absence entry
func (c *Client) CreateAbsence(ctx context.Context, req CreateAbsenceRequest) (*Absence, error) {
	var absence Absence
	if err := c.doRequest(ctx, http.MethodPost, "/absences/create", req, &absence, false); err != nil {
		return nil, fmt.Errorf("failed to create absence starting %s: %w",
			dateutil.FormatISO8601(req.Start.Time), err)
	}

	c.logger.Info("Absence created",
		zap.String("id", absence.ID),
		zap.String("assigned_to", req.AssignedToID),
		zap.String("start", dateutil.FormatISO8601(req.Start.Time)),
		zap.String("end", dateutil.FormatISO8601(req.End.Time)))

	return &absence, nil
}

// doRequest performs HTTP request with authentication.
// Only idempotent calls pass retryable; 4xx responses are never retried.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}, retryable bool) error {
	var payload []byte
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = jsonData
	}

	url := c.baseURL + path

	attempts := 1
	if retryable {
		attempts = c.retries
	}

	var lastErr error
	made := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		made = attempt
		err := c.doRequestOnce(ctx, method, url, payload, result)
		if err == nil {
			return nil
		}

		lastErr = err
		if !isRetryable(err) || attempt == attempts {
			break
		}

		c.logger.Warn("Request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}

	if made > 1 {
		return fmt.Errorf("request failed after %d attempts: %w", made, lastErr)
	}
	return lastErr
}

// doRequestOnce performs a single HTTP request
func (c *Client) doRequestOnce(ctx context.Context, method, url string, payload []byte, result interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.signer.Sign(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

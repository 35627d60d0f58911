package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// APIError is a request the Bot API answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// SendObserver is told about every outbound call.
type SendObserver interface {
	ObserveSend(method, status string)
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	limiter     *rate.Limiter
	maxRetries  int
	backoff     time.Duration
	sendTimeout time.Duration
	observer    SendObserver
}

// DefaultSendTimeout bounds a single outbound send attempt.
const DefaultSendTimeout = 30 * time.Second

// NewClient returns a Bot API client. rps bounds outbound sends; long polls
// are not limited.
func NewClient(apiURL, token string, rps float64, maxRetries int) *Client {
	return &Client{
		// Long polls set their own deadline through the context.
		httpClient:  &http.Client{Timeout: 0},
		baseURL:     strings.TrimRight(apiURL, "/") + "/bot" + token,
		limiter:     rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		maxRetries:  maxRetries,
		backoff:     time.Second,
		sendTimeout: DefaultSendTimeout,
	}
}

func (c *Client) SetObserver(o SendObserver) { c.observer = o }

// SetSendTimeout changes the per-attempt deadline of outbound sends.
func (c *Client) SetSendTimeout(d time.Duration) {
	if d > 0 {
		c.sendTimeout = d
	}
}

func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	var updates []Update
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: []string{"message", "callback_query"},
	}
	if err := c.do(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	return c.send(ctx, "sendMessage", req)
}

func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) error {
	return c.send(ctx, "sendPhoto", req)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	return c.send(ctx, "answerCallbackQuery", req)
}

func (c *Client) EditMessageReplyMarkup(ctx context.Context, req EditMessageReplyMarkupRequest) error {
	return c.send(ctx, "editMessageReplyMarkup", req)
}

// send is a rate-limited call with retries on 429 and 5xx answers.
func (c *Client) send(ctx context.Context, method string, payload any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * c.backoff
			var apiErr *APIError
			if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.attempt(ctx, method, payload)
		c.observe(method, err)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return err
		}
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) attempt(ctx context.Context, method string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()
	return c.do(ctx, method, payload, nil)
}

func (c *Client) observe(method string, err error) {
	if c.observer == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.observer.ObserveSend(method, status)
}

func (c *Client) do(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !envelope.OK {
		apiErr := &APIError{Method: method, Code: envelope.ErrorCode, Description: envelope.Description}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

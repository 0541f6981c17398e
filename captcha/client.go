package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const notReadyCode = "CAPCHA_NOT_READY"

// ErrNotReady is returned by Result while the service is still working.
var ErrNotReady = errors.New("captcha solution not ready")

// ServiceError is an error reported by the solving service in its
// response body (status 0).
type ServiceError struct {
	Code string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("solving service error: %s", e.Code)
}

type ClientOptions struct {
	APIKey    string
	SubmitURL string
	ResultURL string
	Timeout   time.Duration
}

// Client talks to a 2Captcha-compatible solving service.
type Client struct {
	http *resty.Client
	opts ClientOptions
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &Client{http: client, opts: opts}
}

type serviceResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// Submit asks the service to solve the reCAPTCHA identified by siteKey on
// pageURL and returns the request id to poll with.
func (c *Client) Submit(ctx context.Context, siteKey, pageURL string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":       c.opts.APIKey,
			"method":    "userrecaptcha",
			"googlekey": siteKey,
			"pageurl":   pageURL,
			"json":      "1",
		}).
		Post(c.opts.SubmitURL)
	if err != nil {
		return "", fmt.Errorf("submit request failed: %w", err)
	}

	body, err := decode(res)
	if err != nil {
		return "", err
	}
	if body.Status != 1 {
		return "", &ServiceError{Code: body.Request}
	}
	return body.Request, nil
}

// Result polls once for the solution of request id. It returns ErrNotReady
// while the service has not finished.
func (c *Client) Result(ctx context.Context, id string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":    c.opts.APIKey,
			"action": "get",
			"id":     id,
			"json":   "1",
		}).
		Get(c.opts.ResultURL)
	if err != nil {
		return "", fmt.Errorf("result request failed: %w", err)
	}

	body, err := decode(res)
	if err != nil {
		return "", err
	}
	if body.Status == 1 {
		return body.Request, nil
	}
	if body.Request == notReadyCode {
		return "", ErrNotReady
	}
	return "", &ServiceError{Code: body.Request}
}

// The service answers with text/plain even when asked for JSON, so the body
// is decoded by hand rather than through SetResult.
func decode(res *resty.Response) (serviceResponse, error) {
	var body serviceResponse
	if res.IsError() {
		return body, fmt.Errorf("solving service returned HTTP %d", res.StatusCode())
	}
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return body, fmt.Errorf("failed to parse solving service response: %w", err)
	}
	return body, nil
}

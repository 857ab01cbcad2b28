// Package emailjs sends template emails through the EmailJS REST API.
package emailjs

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

	"github.com/angelmondragon/its27-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/sethvargo/go-retry"
)

const (
	defaultBaseURL = "https://api.emailjs.com"
	sendPath       = "/api/v1.0/email/send"
	errBodyLimit   = 1 << 10
)

var (
	errServiceIDRequired = errors.New("emailjs service id is required")
	errPublicKeyRequired = errors.New("emailjs public key is required")
)

// Sender is what notification code depends on.
type Sender interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

type Client struct {
	http       *http.Client
	endpoint   string
	serviceID  string
	publicKey  string
	privateKey string
	retries    uint64
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.endpoint = strings.TrimRight(base, "/") + sendPath
		}
	}
}

// WithBackoff sets the first retry delay; later ones double.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

func NewClient(cfg config.EmailJSConfig, opts ...Option) (*Client, error) {
	c := &Client{
		serviceID:  strings.TrimSpace(cfg.ServiceID),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		privateKey: strings.TrimSpace(cfg.PrivateKey),
		retries:    cfg.Retries,
		backoff:    config.EmailJSBaseBackoff,
	}
	switch {
	case c.serviceID == "":
		return nil, errServiceIDRequired
	case c.publicKey == "":
		return nil, errPublicKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultEmailJSTimeout
	}
	c.http = &http.Client{Timeout: timeout}
	WithBaseURL(defaultBaseURL)(c)
	WithBaseURL(cfg.BaseURL)(c)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send delivers templateID rendered with params. Transport errors, 429 and
// 5xx answers are retried with exponential backoff; any other non-200 answer
// fails at once. Failures are CodeDependency errors.
func (c *Client) Send(ctx context.Context, templateID string, params map[string]string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "emailjs client not configured")
	}
	if strings.TrimSpace(templateID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "template id is required")
	}

	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode email request")
	}

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.post(ctx, payload)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "email request failed")
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	failure := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(failure)
	}
	return failure
}

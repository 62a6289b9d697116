package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// HTTPDataAccess reads the data tree from a blob server.
type HTTPDataAccess struct {
	BaseURL  string
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
}

// AccessError is a non-success answer of the blob server.
type AccessError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *AccessError) Error() string {
	return e.Message
}

// retryable reports whether another attempt may succeed.
func (e *AccessError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewHTTPDataAccess creates a client for baseURL with three attempts per file.
func NewHTTPDataAccess(baseURL string) *HTTPDataAccess {
	return &HTTPDataAccess{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		Attempts: 3,
		Delay:    500 * time.Millisecond,
	}
}

func (a *HTTPDataAccess) url(path string) (string, error) {
	u, err := url.Parse(a.BaseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", errors.Wrap(err, "invalid base URL")
	}
	return u.String(), nil
}

// Open downloads path, retrying network errors, 429 and 5xx answers.
// A 404 maps to ErrNotFound.
func (a *HTTPDataAccess) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	u, err := a.url(path)
	if err != nil {
		return nil, err
	}

	var body io.ReadCloser
	err = retry.Do(
		func() error {
			rc, err := a.get(ctx, u)
			if err != nil {
				return err
			}
			body = rc
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(a.attempts()),
		retry.Delay(a.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
				return false
			}
			var ae *AccessError
			if errors.As(err, &ae) {
				return ae.retryable()
			}
			return true
		}),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithFields(log.Fields{"url": u, "attempt": n + 1}).Warn("Retrying download")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (a *HTTPDataAccess) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	start := time.Now()
	resp, err := a.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.WithError(err).WithField("url", u).Debugf("Request failed (duration: %v)", duration)
		return nil, errors.Wrap(err, "failed to execute request")
	}
	log.WithFields(log.Fields{"url": u, "status": resp.StatusCode}).Debugf("Response (duration: %v)", duration)

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, errors.Wrapf(ErrNotFound, "%s", u)
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, &AccessError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    fmt.Sprintf("not allowed to read %s", u),
		}
	case http.StatusTooManyRequests:
		resp.Body.Close()
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &AccessError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		resp.Body.Close()
		return nil, &AccessError{
			StatusCode: resp.StatusCode,
			Code:       "BLOB_ERROR",
			Message:    fmt.Sprintf("blob server returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}
}

func (a *HTTPDataAccess) attempts() uint {
	if a.Attempts == 0 {
		return 1
	}
	return a.Attempts
}

func (a *HTTPDataAccess) Describe() string { return "http:" + a.BaseURL }

func (a *HTTPDataAccess) Close() error {
	a.Client.CloseIdleConnections()
	return nil
}

package casjobs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// request_guid is attached to every request against the service so that
// individual calls can be correlated in server logs.
const requestGUIDKey = "request_guid"

var casTransport = &http.Transport{
	MaxIdleConns:    10,
	IdleConnTimeout: 30 * time.Minute,
}

type casRestful struct {
	Client         *http.Client
	RequestTimeout time.Duration
}

func newRestful(cfg *Config) *casRestful {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Transport: casTransport}
	}
	return &casRestful{
		Client:         client,
		RequestTimeout: cfg.RequestTimeout,
	}
}

func (cr *casRestful) execute(req *http.Request) ([]byte, int, error) {
	req.Header.Set("User-Agent", "gocasjobs/"+clientVersion)
	res, err := cr.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	logger.WithField("url", req.URL.String()).Debugf(
		"HTTP %v %v: status %v, %v bytes", req.Method, req.URL.Path, res.StatusCode, len(body))
	return body, res.StatusCode, nil
}

// postForm sends an application/x-www-form-urlencoded POST and returns
// the response body and HTTP status. Status handling is left to the
// caller since 404 carries meaning on some endpoints.
func (cr *casRestful) postForm(ctx context.Context, fullURL string, data url.Values) ([]byte, int, error) {
	ctx, cancel := cr.withTimeout(ctx)
	defer cancel()
	tagged, err := attachRequestGUID(fullURL)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tagged, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cr.execute(req)
}

func (cr *casRestful) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	ctx, cancel := cr.withTimeout(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, err
	}
	return cr.execute(req)
}

func (cr *casRestful) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cr.RequestTimeout > 0 {
		return context.WithTimeout(ctx, cr.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func attachRequestGUID(fullURL string) (string, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return "", err
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", err
	}
	values.Set(requestGUIDKey, uuid.New().String())
	u.RawQuery = values.Encode()
	return u.String(), nil
}

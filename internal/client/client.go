// Package client talks to the family-connect API. Every operation is a GET
// on <base>/v1/api with a type parameter; responses carry a DATA array.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Request types that never carry a bearer token.
var publicTypes = map[string]bool{
	"ping":                  true,
	"send_otp":              true,
	"verify_otp":            true,
	"complete_registration": true,
	"login":                 true,
	"refresh":               true,
}

// ErrNoData is returned when a single item was expected but DATA was empty.
var ErrNoData = errors.New("response contained no data")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// TokenSource supplies and stores the bearer and refresh tokens.
type TokenSource interface {
	Token() string
	RefreshToken() string
	SetTokens(token, refreshToken string) error
}

type envelope struct {
	Data  json.RawMessage `json:"DATA"`
	Error string          `json:"ERROR"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	refreshMu sync.Mutex
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New returns a client for baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs one request of type typ and decodes DATA into out. When out
// points to a slice the whole array is decoded; otherwise the first element.
// out may be nil. A 401 on an authenticated type triggers one token refresh
// and one retry.
func (c *Client) Call(ctx context.Context, typ string, params url.Values, out interface{}) error {
	authed := !publicTypes[typ] && c.tokens != nil
	var token string
	if authed {
		token = c.tokens.Token()
	}
	data, err := c.do(ctx, typ, params, token)
	if authed && IsUnauthorized(err) && c.tokens.RefreshToken() != "" {
		if token, err = c.refreshAfter(ctx, token); err != nil {
			return err
		}
		data, err = c.do(ctx, typ, params, token)
	}
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// refreshAfter renews the token pair unless another caller already did so
// after stale was issued.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if current := c.tokens.Token(); current != stale && current != "" {
		return current, nil
	}
	var pair TokenPair
	params := url.Values{"refresh_token": {c.tokens.RefreshToken()}}
	data, err := c.do(ctx, "refresh", params, "")
	if err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if err := decodeData(data, &pair); err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if err := c.tokens.SetTokens(pair.Token, pair.RefreshToken); err != nil {
		return "", err
	}
	return pair.Token, nil
}

func (c *Client) do(ctx context.Context, typ string, params url.Values, token string) (json.RawMessage, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("type", typ)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/api?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	defer res.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(res.Body).Decode(&env)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, &APIError{Status: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%s: decode response: %w", typ, decodeErr)
	}
	return env.Data, nil
}

func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil {
		return nil
	}
	if t := reflect.TypeOf(out); t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Slice {
		return json.Unmarshal(data, out)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode DATA: %w", err)
	}
	if len(items) == 0 {
		return ErrNoData
	}
	return json.Unmarshal(items[0], out)
}

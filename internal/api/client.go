package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/kvstore"
)

const (
	// DefaultBaseURL is used when no api_url is configured.
	DefaultBaseURL   = "http://localhost:5000/api"
	defaultUserAgent = "tunesphere/0.1"
	// RequestTimeout is the fixed ceiling for every call.
	RequestTimeout = 10 * time.Second

	maxErrorBody = 1 << 20
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StoredToken reads the token persisted under kvstore.KeyToken on every call.
func StoredToken(store kvstore.Store) TokenSource {
	return storeTokenSource{store: store}
}

type storeTokenSource struct {
	store kvstore.Store
}

func (s storeTokenSource) Token(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", nil
	}
	value, ok, err := s.store.Get(ctx, kvstore.KeyToken)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Client talks to the TuneSphere REST API. Endpoints are grouped by area.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	log       *zap.Logger

	Auth      AuthAPI
	Users     UserAPI
	Music     MusicAPI
	Playlists PlaylistAPI
	Admin     AdminAPI
}

// NewClient builds a Client bound to baseURL. tokens may be nil, in which case
// every request is unauthenticated.
func NewClient(baseURL string, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: RequestTimeout,
		},
		userAgent: defaultUserAgent,
		tokens:    tokens,
		log:       logger.Named("api"),
	}
	c.Auth = AuthAPI{c: c}
	c.Users = UserAPI{c: c}
	c.Music = MusicAPI{c: c}
	c.Playlists = PlaylistAPI{c: c}
	c.Admin = AdminAPI{c: c}
	return c, nil
}

// BaseURL returns the normalized origin and base path.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// anonymous requests never carry the bearer token.
	anonymous bool
}

func (c *Client) do(ctx context.Context, req request, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.resolve(req.path, req.query)

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.anonymous {
		c.authorize(ctx, httpReq)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("request completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(req.method, req.path, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.Warn("read token failed, sending unauthenticated", zap.Error(err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

// segment escapes a single path element such as an id.
func segment(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

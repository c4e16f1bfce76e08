package discuit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blackmichael/discuit-rss/internal/domain"
	"github.com/blackmichael/discuit-rss/internal/metrics"
)

const (
	DefaultBaseURL   = "https://discuit.net"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "discuit-rss/1.0"

	csrfHeader = "X-Csrf-Token"
)

// Client is a minimal Discuit API client. It authenticates once with
// Initialize and then reuses that session for every request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	// populated by Initialize
	session *Session
}

var _ domain.PostSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new Discuit API client. If baseURL is empty, it
// defaults to https://discuit.net.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize performs the session handshake against /api/_initial. It must
// complete before the client is shared between goroutines.
func (c *Client) Initialize(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/_initial", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setDefaultHeaders(req)

	resp, err := c.do(req, "initial")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, upstreamError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	session, err := ParseSessionCookies(resp.Header.Values("Set-Cookie"))
	if err != nil {
		return err
	}
	c.session = &session
	return nil
}

// Session returns the session established by Initialize, or nil.
func (c *Client) Session() *Session {
	return c.session
}

// GetCommunity looks up a community by name.
func (c *Client) GetCommunity(ctx context.Context, name string) (*domain.Community, error) {
	query := url.Values{}
	query.Set("byName", "true")

	var resp apiCommunity
	if err := c.get(ctx, "community", "/api/communities/"+url.PathEscape(name), query, &resp); err != nil {
		return nil, fmt.Errorf("get community %s: %w", name, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("community %s: %w", name, domain.ErrNotFound)
	}

	return &domain.Community{ID: resp.ID, Name: resp.Name}, nil
}

// GetPosts lists posts. When communityName is set it is resolved to a
// community ID first, so the call costs two round trips.
func (c *Client) GetPosts(ctx context.Context, sort domain.Sort, limit int, communityName string) (*domain.FeedPage, error) {
	query := url.Values{}
	query.Set("sort", string(sort))
	query.Set("limit", strconv.Itoa(limit))

	if communityName != "" {
		community, err := c.GetCommunity(ctx, communityName)
		if err != nil {
			return nil, err
		}
		query.Set("communityId", community.ID)
	}

	var resp postsResponse
	if err := c.get(ctx, "posts", "/api/posts", query, &resp); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return resp.toDomain(), nil
}

// GetUserFeed lists the posts and comments of a user.
func (c *Client) GetUserFeed(ctx context.Context, username string, limit int) (*domain.UserFeedPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var resp userFeedResponse
	if err := c.get(ctx, "user_feed", "/api/users/"+url.PathEscape(username)+"/feed", query, &resp); err != nil {
		return nil, fmt.Errorf("get user feed: %w", err)
	}

	return resp.toDomain(), nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, result any) error {
	if c.session == nil {
		return fmt.Errorf("%w: call Initialize first", domain.ErrAuthentication)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setDefaultHeaders(req)
	req.Header.Set(csrfHeader, c.session.CSRFToken)
	req.AddCookie(&http.Cookie{Name: c.session.SessionCookieName, Value: c.session.SessionID})

	resp, err := c.do(req, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstreamError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// do sends the request and records upstream metrics.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, metrics.StatusLabel(0)).Inc()
		return nil, fmt.Errorf("send request: %w", err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, metrics.StatusLabel(resp.StatusCode)).Inc()
	return resp, nil
}

func (c *Client) setDefaultHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// upstreamError captures a non-2xx response. A body that cannot be read is
// forwarded as empty.
func upstreamError(resp *http.Response) *domain.UpstreamError {
	body, _ := io.ReadAll(resp.Body)
	return &domain.UpstreamError{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
}

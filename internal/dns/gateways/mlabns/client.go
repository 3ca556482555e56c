// Package mlabns is the HTTP gateway to the mlab-ns naming service, which
// picks a healthy, nearby measurement server for a client IP.
package mlabns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/haukened/nodar/internal/dns/domain"
)

// Error message constants for consistent error handling
const (
	errEndpointRequired  = "mlab-ns endpoint is required"
	errUserAgentRequired = "user agent is required"
	errInvalidEndpoint   = "invalid mlab-ns endpoint %q: %w"
	errRemoteIPRequired  = "remote IP is required"
	errBuildRequest      = "build request: %w"
	errQueryFailed       = "query for %s: %w: %v"
	errBadStatus         = "query for %s: %w: status %s"
	errDecodeFailed      = "query for %s: %w: %v"
	errMissingIP         = "query for %s: %w"
)

// maxBodyBytes bounds how much of a response body is decoded.
const maxBodyBytes = 64 << 10

var (
	// ErrTransport covers dial failures, timeouts and non-2xx statuses.
	ErrTransport = errors.New("mlab-ns request failed")
	// ErrDecode is returned when the body is not the expected JSON document.
	ErrDecode = errors.New("mlab-ns response is not valid JSON")
	// ErrNoCandidates is returned when the "ip" list is absent or empty.
	ErrNoCandidates = errors.New("mlab-ns response missing 'ip' field")
)

// HTTPDoer is the subset of *http.Client the gateway needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// response mirrors the JSON document returned for format=json.
type response struct {
	IP      []string `json:"ip"`
	FQDN    string   `json:"fqdn"`
	Site    string   `json:"site"`
	City    string   `json:"city"`
	Country string   `json:"country"`
	URL     string   `json:"url"`
}

// Client issues single, unretried lookups against mlab-ns.
type Client struct {
	endpoint  *url.URL
	userAgent string
	timeout   time.Duration
	http      HTTPDoer
}

// Options configures a Client.
type Options struct {
	// required parameters
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	// options to inject for testing purposes
	Hostname   string
	HTTPClient HTTPDoer
}

// hostname is replaceable in tests.
var hostname = os.Hostname

// NewClient creates a Client. The User-Agent header is "<UserAgent> from <hostname>".
// Timeout defaults to 10 seconds and HTTPClient to http.DefaultClient.
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New(errEndpointRequired)
	}
	if opts.UserAgent == "" {
		return nil, errors.New(errUserAgentRequired)
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf(errInvalidEndpoint, opts.Endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf(errInvalidEndpoint, opts.Endpoint, errors.New("scheme and host required"))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Hostname == "" {
		h, err := hostname()
		if err != nil || h == "" {
			h = "localhost"
		}
		opts.Hostname = h
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{
		endpoint:  u,
		userAgent: opts.UserAgent + " from " + opts.Hostname,
		timeout:   opts.Timeout,
		http:      opts.HTTPClient,
	}, nil
}

// UserAgent returns the User-Agent header value sent with every lookup.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// ensureContextDeadline applies the client timeout when ctx has no deadline.
func (c *Client) ensureContextDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, nil
}

// lookupURL returns the endpoint with ip and format=json set.
func (c *Client) lookupURL(remoteIP string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("ip", remoteIP)
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String()
}

// Lookup asks mlab-ns for the server nearest remoteIP and returns the first
// candidate address. Failures wrap ErrTransport, ErrDecode or ErrNoCandidates.
func (c *Client) Lookup(ctx context.Context, remoteIP string) (domain.Target, error) {
	if remoteIP == "" {
		return domain.Target{}, errors.New(errRemoteIPRequired)
	}

	ctx, cancel := c.ensureContextDeadline(ctx)
	if cancel != nil {
		defer cancel()
	}

	path := c.endpoint.Path + "?ip=" + remoteIP + "&format=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lookupURL(remoteIP), nil)
	if err != nil {
		return domain.Target{}, fmt.Errorf(errBuildRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Target{}, fmt.Errorf(errQueryFailed, path, ErrTransport, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Target{}, fmt.Errorf(errBadStatus, path, ErrTransport, resp.Status)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return domain.Target{}, fmt.Errorf(errDecodeFailed, path, ErrDecode, err)
	}

	if len(body.IP) == 0 || strings.TrimSpace(body.IP[0]) == "" {
		return domain.Target{}, fmt.Errorf(errMissingIP, path, ErrNoCandidates)
	}

	// mlab-ns may return several addresses; only the first is used.
	return domain.Target{
		IP:   strings.TrimSpace(body.IP[0]),
		FQDN: body.FQDN,
		Site: body.Site,
	}, nil
}

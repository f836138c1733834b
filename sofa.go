package sofa

import (
	"context"
	"net/http"
	"time"

	"github.com/sofadb/sofa/chttp"
)

// Version is the current version of this package.
const Version = "1.0.0"

const defaultPurgeLimit = 500

// Client is a connection to a server instance.
type Client struct {
	*chttp.Client

	purgeLimit int
}

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	purgeLimit int
	basicAuth  *chttp.BasicAuth
}

// Option configures a Client at construction time.
type Option func(*clientOptions)

// WithHTTPClient supplies a custom *http.Client for all server connections.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithTimeout bounds every request issued by the client. Operations composed
// of several requests, such as Purge, are bounded per request, not in
// aggregate.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithPurgeLimit sets the maximum number of change-feed entries examined by a
// single Purge pass. The default is 500.
func WithPurgeLimit(limit int) Option {
	return func(o *clientOptions) {
		o.purgeLimit = limit
	}
}

// WithBasicAuth authenticates with HTTP Basic Auth, rather than the session
// cookie used for credentials embedded in the DSN.
func WithBasicAuth(username, password string) Option {
	return func(o *clientOptions) {
		o.basicAuth = &chttp.BasicAuth{Username: username, Password: password}
	}
}

// New connects to a server instance. The DSN has the form
// http[s]://[user:pass@]host[:port]/; credentials included in the DSN
// authenticate using a session cookie.
func New(ctx context.Context, dsn string, options ...Option) (*Client, error) {
	opts := &clientOptions{
		httpClient: &http.Client{},
		purgeLimit: defaultPurgeLimit,
	}
	for _, option := range options {
		option(opts)
	}
	if opts.timeout > 0 {
		opts.httpClient.Timeout = opts.timeout
	}
	chttpClient, err := chttp.NewWithClient(ctx, opts.httpClient, dsn)
	if err != nil {
		return nil, err
	}
	if opts.basicAuth != nil {
		if err := chttpClient.Auth(ctx, opts.basicAuth); err != nil {
			return nil, err
		}
	}
	return &Client{
		Client:     chttpClient,
		purgeLimit: opts.purgeLimit,
	}, nil
}

// DB returns a handle to the named database. The database is not checked for
// existence; operations on a missing database fail with a NotFound error.
func (c *Client) DB(name string) *DB {
	return &DB{
		client: c,
		name:   name,
	}
}

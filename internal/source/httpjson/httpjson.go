// Package httpjson loads records from an HTTP endpoint that returns a JSON
// array of objects, fetched once per scan with a single GET.
package httpjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/decode"
)

const (
	// OptionObject is the table option naming the path under api_url.
	OptionObject = "object"

	// OptionAPIKey is the optional server option sent as a bearer token.
	OptionAPIKey = "api_key"

	UserAgent = "koustreak-fdw"
)

// Request is a GET to URL with the given headers.
type Request struct {
	URL     string
	Headers map[string]string
}

// Response is what the endpoint returned. Body is fully read.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Client performs GET requests. Implementations must return an error only
// when no response was received; a non-2xx status is a Response.
type Client interface {
	Get(ctx context.Context, req Request) (*Response, error)
}

// HTTPClient is the net/http backed Client.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns a Client with the given overall request timeout.
// A zero timeout means none.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) Get(ctx context.Context, req Request) (*Response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := c.client.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	return &Response{Status: resp.StatusCode, Headers: headers, Body: body}, nil
}

// Source is the HTTP JSON source.
type Source struct {
	source.MapFields
	client Client
	log    *logger.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithClient replaces the default net/http client.
func WithClient(c Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// WithLogger sets the sink for fetch reports.
func WithLogger(l *logger.Logger) Option {
	return func(s *Source) {
		s.log = l
	}
}

func New(opts ...Option) *Source {
	s := &Source{
		client: NewHTTPClient(30 * time.Second),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (*Source) Name() string { return "httpjson" }

// Load fetches <BaseURL>/<object> and decodes the body as a JSON array.
func (s *Source) Load(ctx context.Context, p source.Params) ([]source.Record, error) {
	object, err := p.Table.Require(OptionObject)
	if err != nil {
		return nil, err
	}

	target, err := url.JoinPath(p.BaseURL, object)
	if err != nil {
		return nil, errs.InvalidOption(OptionObject, object, err)
	}

	headers := map[string]string{
		"user-agent": UserAgent,
		"accept":     "application/json",
	}
	if key, ok := p.Server.Get(OptionAPIKey); ok && key != "" {
		headers["authorization"] = "Bearer " + key
	}

	resp, err := s.client.Get(ctx, Request{URL: target, Headers: headers})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("request to %s failed", target), err)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, errs.New(errs.ErrKindFetchFailed,
			fmt.Sprintf("request to %s returned status %d", target, resp.Status))
	}

	records, err := decode.JSONArrayBytes(resp.Body)
	if err != nil {
		return nil, err
	}

	s.log.ReportInfo(fmt.Sprintf("fetched %d records from %s", len(records), target))
	return records, nil
}

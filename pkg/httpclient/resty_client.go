package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultMaxRedirects bounds redirect chains followed by outbound GETs.
const DefaultMaxRedirects = 10

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout and the default redirect cap.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return NewRestyClientWithRedirects(timeout, DefaultMaxRedirects)
}

// NewRestyClientWithRedirects creates a RestyClient that follows at most maxRedirects hops.
func NewRestyClientWithRedirects(timeout time.Duration, maxRedirects int) *RestyClient {
	c := newRestyBaseClient(timeout)
	if maxRedirects <= 0 {
		c.SetRedirectPolicy(resty.NoRedirectPolicy())
	} else {
		c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	}
	return &RestyClient{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// Any status code is returned as a Response; interpretation is left to callers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

package sources

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-health-news/pkg/httpclient"
)

type stubResponse struct {
	body   []byte
	status int
}

func (r stubResponse) Body() []byte        { return r.body }
func (r stubResponse) StatusCode() int     { return r.status }
func (r stubResponse) Header() http.Header { return http.Header{} }

type scriptedReply struct {
	status int
	body   string
	err    error
}

// scriptedClient replays replies in order, repeating the last one.
type scriptedClient struct {
	t       *testing.T
	mu      sync.Mutex
	replies []scriptedReply
	calls   int
	urls    []string
	headers []map[string]string
}

func (s *scriptedClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls = append(s.urls, url)
	s.headers = append(s.headers, headers)
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	reply := s.replies[idx]
	if reply.err != nil {
		return nil, reply.err
	}
	status := reply.status
	if status == 0 {
		status = http.StatusOK
	}
	return stubResponse{body: []byte(reply.body), status: status}, nil
}

type recordingGuard struct {
	mu      sync.Mutex
	tripped map[string]bool
	trips   int
}

func newRecordingGuard() *recordingGuard {
	return &recordingGuard{tripped: map[string]bool{}}
}

func (g *recordingGuard) IsTripped(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripped[key]
}

func (g *recordingGuard) Trip(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tripped[key] = true
	g.trips++
}

package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/flexprice/playerseats/internal/httpclient"
)

// MockHTTPClient implements httpclient.Client for listener endpoint tests
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
	}
}

// RegisterResponse registers a mock response for URLs ending in url
func (m *MockHTTPClient) RegisterResponse(url string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[url] = resp
}

// Send records the request and answers like httpclient.DefaultClient would,
// returning an *httpclient.Error for 4xx and 5xx statuses
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *req
	cp.Headers = make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		cp.Headers[k] = v
	}
	cp.Body = append([]byte(nil), req.Body...)
	m.requests = append(m.requests, &cp)

	resp := MockResponse{StatusCode: http.StatusNotFound, Body: []byte("Not Found")}
	for route, r := range m.routes {
		if strings.HasSuffix(req.URL, route) {
			resp = r
			break
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpclient.NewError(resp.StatusCode, resp.Body)
	}

	headers := resp.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return &httpclient.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    headers,
	}, nil
}

// Requests returns every request sent so far
func (m *MockHTTPClient) Requests() []*httpclient.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*httpclient.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsTo returns the requests whose URL ends in url
func (m *MockHTTPClient) RequestsTo(url string) []*httpclient.Request {
	var out []*httpclient.Request
	for _, r := range m.Requests() {
		if strings.HasSuffix(r.URL, url) {
			out = append(out, r)
		}
	}
	return out
}

// Clear removes all registered responses and recorded requests
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.requests = nil
}

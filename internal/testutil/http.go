package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// HTTPTestHelper drives a gin router in-process
type HTTPTestHelper struct {
	t       *testing.T
	router  *gin.Engine
	headers map[string]string
}

// NewHTTPTestHelper creates a new HTTP test helper with gin in test mode
func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	gin.SetMode(gin.TestMode)
	return &HTTPTestHelper{
		t:       t,
		router:  gin.New(),
		headers: map[string]string{},
	}
}

// SetRouter sets the gin router to use for testing
func (h *HTTPTestHelper) SetRouter(router *gin.Engine) {
	h.router = router
}

// WithBearer returns a helper that sends token on every request
func (h *HTTPTestHelper) WithBearer(token string) *HTTPTestHelper {
	headers := make(map[string]string, len(h.headers)+1)
	for k, v := range h.headers {
		headers[k] = v
	}
	headers["Authorization"] = "Bearer " + token
	return &HTTPTestHelper{t: h.t, router: h.router, headers: headers}
}

// PostJSON performs a POST request with JSON payload
func (h *HTTPTestHelper) PostJSON(url string, payload interface{}) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, url, h.encode(payload), nil)
}

// PutJSON performs a PUT request with JSON payload
func (h *HTTPTestHelper) PutJSON(url string, payload interface{}) *httptest.ResponseRecorder {
	return h.do(http.MethodPut, url, h.encode(payload), nil)
}

// GetJSON performs a GET request expecting JSON response
func (h *HTTPTestHelper) GetJSON(url string) *httptest.ResponseRecorder {
	return h.do(http.MethodGet, url, nil, map[string]string{"Accept": "application/json"})
}

// GetWithHeaders performs a GET request with custom headers
func (h *HTTPTestHelper) GetWithHeaders(url string, headers map[string]string) *httptest.ResponseRecorder {
	return h.do(http.MethodGet, url, nil, headers)
}

// Delete performs a DELETE request
func (h *HTTPTestHelper) Delete(url string) *httptest.ResponseRecorder {
	return h.do(http.MethodDelete, url, nil, nil)
}

func (h *HTTPTestHelper) encode(payload interface{}) io.Reader {
	body, err := json.Marshal(payload)
	require.NoError(h.t, err, "Failed to marshal JSON payload")
	return bytes.NewReader(body)
}

func (h *HTTPTestHelper) do(method, url string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, body)
	require.NoError(h.t, err, "Failed to create HTTP request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range h.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

// AssertJSONResponse asserts that the response is valid JSON and unmarshals it
func (h *HTTPTestHelper) AssertJSONResponse(recorder *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	require.Equal(h.t, expectedStatus, recorder.Code, "Unexpected status code")
	require.Equal(h.t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"), "Expected JSON content type")

	err := json.Unmarshal(recorder.Body.Bytes(), target)
	require.NoError(h.t, err, "Failed to unmarshal JSON response")
}

// AssertErrorResponse asserts that the response contains an error
func (h *HTTPTestHelper) AssertErrorResponse(recorder *httptest.ResponseRecorder, expectedStatus int, expectedErrorSubstring string) {
	require.Equal(h.t, expectedStatus, recorder.Code, "Unexpected status code")

	var errorResponse map[string]interface{}
	err := json.Unmarshal(recorder.Body.Bytes(), &errorResponse)
	require.NoError(h.t, err, "Failed to unmarshal error response")

	errorMessage, exists := errorResponse["error"]
	require.True(h.t, exists, "Expected error field in response")
	require.Contains(h.t, errorMessage, expectedErrorSubstring, "Error message should contain expected substring")
}

// MockHTTPServer provides a mock HTTP server for testing external API calls
type MockHTTPServer struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
	mu       sync.Mutex
	hits     map[string]int
}

// NewMockHTTPServer creates a new mock HTTP server
func NewMockHTTPServer() *MockHTTPServer {
	mock := &MockHTTPServer{
		handlers: make(map[string]http.HandlerFunc),
		hits:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", mock.routeRequest)

	mock.server = httptest.NewServer(mux)
	return mock
}

// URL returns the mock server URL
func (m *MockHTTPServer) URL() string {
	return m.server.URL
}

// Close closes the mock server
func (m *MockHTTPServer) Close() {
	m.server.Close()
}

// On registers a handler for a specific path
func (m *MockHTTPServer) On(path string, handler http.HandlerFunc) {
	m.handlers[path] = handler
}

// Hits returns how many requests were made to path
func (m *MockHTTPServer) Hits(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

// routeRequest routes requests to registered handlers
func (m *MockHTTPServer) routeRequest(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits[r.URL.Path]++
	m.mu.Unlock()

	if handler, exists := m.handlers[r.URL.Path]; exists {
		handler(w, r)
		return
	}

	// Default handler returns 404
	http.NotFound(w, r)
}

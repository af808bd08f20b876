package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// APIResponse is a canned product API answer.
type APIResponse struct {
	Status int
	Body   string
}

// ProductAPI is a fake product API serving GET /api/product/{id}.
type ProductAPI struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]APIResponse
	calls     map[string]int
}

// NewProductAPI starts a fake API. Unknown identifiers answer 404.
func NewProductAPI(t testing.TB, responses map[string]APIResponse) *ProductAPI {
	t.Helper()

	api := &ProductAPI{responses: map[string]APIResponse{}, calls: map[string]int{}}
	for id, resp := range responses {
		api.responses[id] = resp
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)
	return api
}

// Set replaces the answer for id.
func (a *ProductAPI) Set(id string, resp APIResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[id] = resp
}

// Calls reports how many requests were made for id.
func (a *ProductAPI) Calls(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[id]
}

func (a *ProductAPI) serve(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutPrefix(r.URL.Path, "/api/product/")
	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	a.mu.Lock()
	a.calls[id]++
	resp, found := a.responses[id]
	a.mu.Unlock()

	if !found {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

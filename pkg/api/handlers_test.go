package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/ringlog/pkg/codec"
	"github.com/ssargent/ringlog/pkg/ring"
)

var (
	metricsOnce sync.Once
	testMetrics *Metrics
)

// sharedMetrics returns a process-wide Metrics instance; promauto registers
// into the default registry, so creating one per test would panic on
// duplicate registration.
func sharedMetrics() *Metrics {
	metricsOnce.Do(func() { testMetrics = NewMetrics() })
	return testMetrics
}

type stubArchive struct {
	stored []archivedCall
	fail   bool
}

type archivedCall struct {
	message  string
	position int
}

func (s *stubArchive) Store(rec *codec.Record, position int) (*ksuid.KSUID, error) {
	if s.fail {
		return nil, fmt.Errorf("archive unavailable")
	}
	s.stored = append(s.stored, archivedCall{message: string(rec.Message), position: position})
	id := ksuid.New()
	return &id, nil
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := ring.NewRingStore(ring.RingConfig{Capacity: 64 * 1024, VerifyIntegrity: true})
	if err != nil {
		t.Fatalf("Failed to create ring store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewServer(store, &stubArchive{}, ServerConfig{}, sharedMetrics())
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}

func appendRecord(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/records", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	server.handleAppend(w, req)
	return w
}

func TestServer_handleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	if !response.Success {
		t.Error("Expected success to be true")
	}
	if response.Data == nil {
		t.Error("Expected data to be present")
	}
}

func TestServer_handleAppend(t *testing.T) {
	server := setupTestServer(t)

	w := appendRecord(t, server, `{"level":"WARNING","errno":28,"message":"disk low","detail":"volume /data","hint":"prune"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	response := decodeResponse(t, w)
	if !response.Success {
		t.Errorf("Expected success, got error %q", response.Error)
	}
}

func TestServer_handleAppend_NumericLevel(t *testing.T) {
	server := setupTestServer(t)

	w := appendRecord(t, server, `{"level":20,"message":"numeric level"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_handleAppend_BadRequests(t *testing.T) {
	server := setupTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing message", `{"level":"WARNING"}`},
		{"unknown level name", `{"level":"SEVERE","message":"x"}`},
		{"lowercase level name", `{"level":"warning","message":"x"}`},
		{"missing level", `{"message":"x"}`},
		{"level out of range", `{"level":300,"message":"x"}`},
		{"fractional level", `{"level":19.5,"message":"x"}`},
		{"malformed json", `{"level":`},
	}
	for _, tc := range cases {
		w := appendRecord(t, server, tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", tc.name, w.Code)
		}
		if response := decodeResponse(t, w); response.Success || response.Error == "" {
			t.Errorf("%s: expected error envelope, got %+v", tc.name, response)
		}
	}
}

func TestServer_handleAppend_TooLarge(t *testing.T) {
	store, err := ring.NewRingStore(ring.RingConfig{Capacity: 1024})
	if err != nil {
		t.Fatalf("Failed to create ring store: %v", err)
	}
	defer store.Close()
	server := NewServer(store, nil, ServerConfig{}, sharedMetrics())

	big := make([]byte, 2048)
	for i := range big {
		big[i] = 'x'
	}
	body, _ := json.Marshal(AppendRequest{Level: "ERROR", Message: string(big)})

	req := httptest.NewRequest("POST", "/records", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	server.handleAppend(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}
}

func TestServer_handleDrain(t *testing.T) {
	server := setupTestServer(t)

	for i := 0; i < 3; i++ {
		w := appendRecord(t, server, fmt.Sprintf(`{"level":"INFO","message":"record %d"}`, i))
		if w.Code != http.StatusOK {
			t.Fatalf("Append %d failed: %s", i, w.Body.String())
		}
	}

	req := httptest.NewRequest("GET", "/records", nil)
	w := httptest.NewRecorder()
	server.handleDrain(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Success bool          `json:"success"`
		Data    DrainResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data.Count != 3 {
		t.Fatalf("Expected 3 records, got %d", envelope.Data.Count)
	}
	for i, rec := range envelope.Data.Records {
		want := fmt.Sprintf("record %d", i)
		if rec.Message != want {
			t.Errorf("Record %d: got %q, want %q", i, rec.Message, want)
		}
		if rec.LevelName != "INFO" {
			t.Errorf("Record %d level name: got %q", i, rec.LevelName)
		}
	}

	// A second drain returns nothing.
	w = httptest.NewRecorder()
	server.handleDrain(w, httptest.NewRequest("GET", "/records", nil))
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data.Count != 0 {
		t.Errorf("Second drain: expected 0 records, got %d", envelope.Data.Count)
	}
}

func TestServer_handleDrain_Archive(t *testing.T) {
	server := setupTestServer(t)
	sink := server.archive.(*stubArchive)

	if w := appendRecord(t, server, `{"level":"ERROR","message":"keep me"}`); w.Code != http.StatusOK {
		t.Fatalf("Append failed: %s", w.Body.String())
	}

	req := httptest.NewRequest("GET", "/records?archive=true", nil)
	w := httptest.NewRecorder()
	server.handleDrain(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sink.stored) != 1 || sink.stored[0].message != "keep me" {
		t.Errorf("Archive sink received %+v", sink.stored)
	}
}

func TestServer_handleDrain_ArchiveUnconfigured(t *testing.T) {
	store, err := ring.NewRingStore(ring.RingConfig{Capacity: 4096})
	if err != nil {
		t.Fatalf("Failed to create ring store: %v", err)
	}
	defer store.Close()
	server := NewServer(store, nil, ServerConfig{}, sharedMetrics())

	req := httptest.NewRequest("GET", "/records?archive=true", nil)
	w := httptest.NewRecorder()
	server.handleDrain(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_handleFlush(t *testing.T) {
	server := setupTestServer(t)

	if w := appendRecord(t, server, `{"level":"INFO","message":"doomed"}`); w.Code != http.StatusOK {
		t.Fatalf("Append failed: %s", w.Body.String())
	}

	req := httptest.NewRequest("DELETE", "/records", nil)
	w := httptest.NewRecorder()
	server.handleFlush(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.handleDrain(w, httptest.NewRequest("GET", "/records", nil))
	var envelope struct {
		Data DrainResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data.Count != 0 {
		t.Errorf("Drain after flush: expected 0 records, got %d", envelope.Data.Count)
	}
}

func TestServer_handleLevels(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest("GET", "/levels", nil)
	w := httptest.NewRecorder()
	server.handleLevels(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var envelope struct {
		Data []struct {
			Name string `json:"name"`
			Code int    `json:"code"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(envelope.Data) != 13 {
		t.Fatalf("Expected 13 levels, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Name != "DEBUG5" || envelope.Data[0].Code != 10 {
		t.Errorf("First level: got %+v", envelope.Data[0])
	}
}

func TestServer_handleLevelLookup(t *testing.T) {
	server := setupTestServer(t)

	lookup := func(name string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/levels/"+name, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("name", name)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		w := httptest.NewRecorder()
		server.handleLevelLookup(w, req)
		return w
	}

	w := lookup("FATAL")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var envelope struct {
		Data struct {
			Name string `json:"name"`
			Code int    `json:"code"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data.Code != 21 {
		t.Errorf("FATAL code: got %d, want 21", envelope.Data.Code)
	}

	if w := lookup("NOPE"); w.Code != http.StatusBadRequest {
		t.Errorf("Unknown level: expected status 400, got %d", w.Code)
	}
}

func TestServer_handleStats(t *testing.T) {
	server := setupTestServer(t)

	if w := appendRecord(t, server, `{"level":"INFO","message":"advance the cursor"}`); w.Code != http.StatusOK {
		t.Fatalf("Append failed: %s", w.Body.String())
	}

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	server.handleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var envelope struct {
		Data ring.RingStats `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data.Capacity != 64*1024 {
		t.Errorf("Capacity: got %d", envelope.Data.Capacity)
	}
	if envelope.Data.WritePos == 0 {
		t.Error("Write position should have advanced")
	}
}

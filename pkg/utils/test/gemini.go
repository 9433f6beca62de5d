package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// FakeGemini is an httptest server that answers generateContent calls with a
// configurable status and body, and records every request it receives.
type FakeGemini struct {
	Server *httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	delay    time.Duration
	requests []RecordedRequest
}

// RecordedRequest is one call received by FakeGemini.
type RecordedRequest struct {
	Path string
	Key  string
	Body []byte
}

// NewFakeGemini starts a fake upstream that replies "ok" until configured otherwise.
func NewFakeGemini() *FakeGemini {
	f := &FakeGemini{status: http.StatusOK}
	f.body = candidateBody("ok")
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// URL is the base URL to configure as the upstream.
func (f *FakeGemini) URL() string {
	return f.Server.URL
}

// Close shuts down the server.
func (f *FakeGemini) Close() {
	f.Server.Close()
}

// Reply makes the server answer 200 with text as the first candidate part.
func (f *FakeGemini) Reply(text string) {
	f.Respond(http.StatusOK, candidateBody(text))
}

// Respond sets a raw status and body.
func (f *FakeGemini) Respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// Delay holds every response for d before writing it.
func (f *FakeGemini) Delay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// CallCount returns the number of requests received.
func (f *FakeGemini) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of the recorded requests.
func (f *FakeGemini) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastContents decodes the "contents" array of the most recent request.
func (f *FakeGemini) LastContents() []map[string]any {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return nil
	}

	var payload struct {
		Contents []map[string]any `json:"contents"`
	}
	if err := json.Unmarshal(reqs[len(reqs)-1].Body, &payload); err != nil {
		return nil
	}
	return payload.Contents
}

// LastRawContents returns the "contents" elements of the most recent request
// exactly as they appeared on the wire.
func (f *FakeGemini) LastRawContents() []json.RawMessage {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return nil
	}

	var payload struct {
		Contents []json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(reqs[len(reqs)-1].Body, &payload); err != nil {
		return nil
	}
	return payload.Contents
}

func (f *FakeGemini) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Path: r.URL.Path,
		Key:  r.URL.Query().Get("key"),
		Body: body,
	})
	status, respBody, delay := f.status, f.body, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

func candidateBody(text string) string {
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

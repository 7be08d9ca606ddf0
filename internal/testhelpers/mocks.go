// Package testhelpers provides shared test doubles for the civic classifier.
package testhelpers

import (
	"context"
	"sync"
)

// MockCaptioner returns a fixed caption or error and records its calls.
type MockCaptioner struct {
	mu       sync.Mutex
	Text     string
	Err      error
	PanicMsg string
	images   [][]byte
}

// Caption implements the captioning collaborator.
func (m *MockCaptioner) Caption(_ context.Context, image []byte) (string, error) {
	m.mu.Lock()
	m.images = append(m.images, image)
	m.mu.Unlock()

	if m.PanicMsg != "" {
		panic(m.PanicMsg)
	}
	return m.Text, m.Err
}

// Calls returns how many times Caption was invoked.
func (m *MockCaptioner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

// MockTranscriber returns a fixed transcript or error and records its calls.
type MockTranscriber struct {
	mu    sync.Mutex
	Text  string
	Err   error
	calls int
}

// Transcribe implements the transcription collaborator.
func (m *MockTranscriber) Transcribe(context.Context, []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.Text, m.Err
}

// Calls returns how many times Transcribe was invoked.
func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

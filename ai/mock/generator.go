package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned behavior.
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	callCount int
	lastUser  string
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns an injected result or a canned answer that echoes the
// user prompt length so tests can assert it was threaded through.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.callCount++
	m.lastUser = userPrompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, userPrompt)
	}

	return fmt.Sprintf("mock answer (%d prompt bytes)", len(userPrompt)), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastUserPrompt returns the user prompt from the most recent call.
func (m *MockGenerator) LastUserPrompt() string {
	return m.lastUser
}

// Reset clears call tracking and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastUser = ""
	m.GenerateFunc = nil
}

package model

import (
	"context"
	"fmt"
	"strings"
)

// Message is one entry of the ordered history sent to a model. Role is
// "user", "assistant" or "tool". Assistant messages may carry tool calls;
// tool messages carry the response to a prior call.
type Message struct {
	Role         string        `json:"role"`
	Text         string        `json:"text,omitempty"`
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`
	ToolResponse *ToolResponse `json:"tool_response,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded argument payload
}

// ToolResponse carries the locally computed result of a tool call back to
// the model.
type ToolResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized model input: a system instruction, ordered
// message history, sampling parameters and optional tools.
type Request struct {
	System      string           `json:"system"`
	Messages    []Message        `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int64            `json:"max_tokens,omitempty"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// Response is a partial or final chunk emitted by a model. Partial responses
// carry a text fragment; the final response carries the full concatenated
// text plus any tool calls and the finish reason.
type Response struct {
	Partial      bool       `json:"partial"`
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// Info describes a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the engine and analysis chain need to drive
// generation. Implementations close both channels when the call terminates;
// a terminal failure is delivered on the error channel.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns metadata about the model implementation.
	Info() Info
}

// MockModel is a deterministic in-memory Model for tests. Responses are
// looked up by substring match against the last user message; unmatched
// requests get a generic completion. Err, when set, fails every call.
type MockModel struct {
	info      Info
	responses []mockResponse
	Err       error
}

type mockResponse struct {
	match string
	text  string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock", SupportsTools: true}}
}

// AddResponse registers a canned completion for requests whose last user
// message contains match. Registrations are checked in order.
func (m *MockModel) AddResponse(match, text string) {
	m.responses = append(m.responses, mockResponse{match: match, text: text})
}

// Generate implements Model; streams word-level fragments then the final
// response when req.Stream is set.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if m.Err != nil {
			errCh <- m.Err
			return
		}

		full := m.lookup(req)
		if req.Stream {
			for _, frag := range splitFragments(full) {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: frag}:
				}
			}
		}
		respCh <- Response{Text: full, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

func (m *MockModel) lookup(req Request) string {
	var last string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			last = msg.Text
		}
	}
	for _, r := range m.responses {
		if strings.Contains(last, r.match) {
			return r.text
		}
	}
	return fmt.Sprintf("Mock response to: %s", last)
}

// splitFragments chunks text into whitespace-preserving word fragments so
// streamed output reassembles byte-identically.
func splitFragments(text string) []string {
	var frags []string
	start := 0
	for i, r := range text {
		if r == ' ' && i > start {
			frags = append(frags, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		frags = append(frags, text[start:])
	}
	return frags
}

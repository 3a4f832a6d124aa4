// Package testutil provides a deterministic stand-in for the completion model
// so that handler and orchestrator tests run without network access.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// ModelName is the identifier the mock registers under.
const ModelName = "mock/assistant"

// MockModel matches the last user message against registered patterns and
// returns the corresponding canned answer. A rule may first request the
// contact lookup tool; the mock then answers on the follow-up round using the
// tool's output, mirroring the request/response shape of a real model.
//
// Thread-safe for concurrent use.
type MockModel struct {
	mu       sync.Mutex
	rules    []mockRule
	toolName string
	fallback string
	calls    int
}

type mockRule struct {
	pattern string
	respond func(toolOutput string) string
	useTool bool
}

// NewMockModel creates a mock with the given fallback answer, returned when
// no pattern matches.
func NewMockModel(fallback string) *MockModel {
	return &MockModel{fallback: fallback}
}

// AddResponse registers a plain text answer for user messages containing the
// pattern (case-insensitive). Rules are checked in registration order.
func (m *MockModel) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern: strings.ToLower(pattern),
		respond: func(string) string { return response },
	})
}

// AddToolResponse registers a rule that requests the named tool first and
// then builds the answer from the tool's output.
func (m *MockModel) AddToolResponse(pattern, tool string, respond func(toolOutput string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern: strings.ToLower(pattern),
		respond: respond,
		useTool: true,
	})
	m.toolName = tool
}

// Calls reports how many generate rounds the mock has served, tool rounds
// included.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Register registers the mock on the genkit instance under ModelName.
func (m *MockModel) Register(g *genkit.Genkit) ai.Model {
	return genkit.DefineModel(g, ModelName, &ai.ModelOptions{
		Label: "Mock Assistant Model",
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			Tools:      true,
			SystemRole: true,
		},
	}, m.generate)
}

func (m *MockModel) generate(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
	var userText string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == ai.RoleUser {
			userText = req.Messages[i].Text()
			break
		}
	}
	toolOutput, answered := toolOutputFrom(req.Messages)

	m.mu.Lock()
	m.calls++
	var matched *mockRule
	lower := strings.ToLower(userText)
	for i := range m.rules {
		if strings.Contains(lower, m.rules[i].pattern) {
			matched = &m.rules[i]
			break
		}
	}
	toolName := m.toolName
	fallback := m.fallback
	m.mu.Unlock()

	// A tool rule requests the tool exactly once; the follow-up round sees
	// the tool response in the history and answers in text.
	if matched != nil && matched.useTool && !answered {
		return &ai.ModelResponse{
			Request: req,
			Message: &ai.Message{
				Role: ai.RoleModel,
				Content: []*ai.Part{{
					Kind:        ai.PartToolRequest,
					ToolRequest: &ai.ToolRequest{Name: toolName, Input: map[string]any{}},
				}},
			},
		}, nil
	}

	responseText := fallback
	if matched != nil {
		responseText = matched.respond(toolOutput)
	}
	if cb != nil {
		for _, chunk := range splitChunks(responseText) {
			if err := cb(ctx, &ai.ModelResponseChunk{
				Content: []*ai.Part{ai.NewTextPart(chunk)},
			}); err != nil {
				return nil, err
			}
		}
	}
	return &ai.ModelResponse{
		Request: req,
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart(responseText)},
		},
	}, nil
}

// toolOutputFrom extracts the most recent tool response text from the
// history, if any.
func toolOutputFrom(messages []*ai.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, part := range messages[i].Content {
			if part.Kind != ai.PartToolResponse || part.ToolResponse == nil {
				continue
			}
			switch out := part.ToolResponse.Output.(type) {
			case string:
				return out, true
			case map[string]any:
				if s, ok := out["output"].(string); ok {
					return s, true
				}
			}
			return "", true
		}
	}
	return "", false
}

// splitChunks breaks the answer into two pieces so tests observe an actual
// multi-chunk stream. Concatenating the chunks yields the full text.
func splitChunks(text string) []string {
	if len(text) < 2 {
		return []string{text}
	}
	mid := len(text) / 2
	return []string{text[:mid], text[mid:]}
}

// Package assistant composes the system prompt, the conversation history and
// the contact lookup tool into a streamed genkit completion. One request is
// one completion; the caller re-sends the full history every time, so there
// is no server-side conversation state.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
)

// maxToolSteps caps the number of chained model/tool invocations within one
// chat request. A completion that would need a fourth step is cut off by the
// model service's own boundary policy and forwarded as received.
const maxToolSteps = 3

// ToolName is the registered name of the contact lookup tool.
const ToolName = "listContacts"

const toolDescription = "Lists all contacts the current user has stored, " +
	"with each contact's name, birthday and optional notes. Takes no arguments."

const systemPrompt = `You are a friendly birthday assistant. You help the user remember the birthdays of their contacts.
You can answer questions about the contacts the user has stored: their names, birthdays and notes.
Always call the listContacts tool before answering a question about the user's contacts, and never mention contacts or birthdays that the tool did not return.
If the tool reports that no contacts exist or the user is not recognized, say so plainly instead of inventing data.
Keep answers short and conversational; use plain text without markdown tables.
Today's date is %s.`

// ContactSource is the read-only slice of the store the tool is allowed to
// touch.
type ContactSource interface {
	ContactsByUser(ctx context.Context, userId string) ([]model.Contact, error)
}

// Counter is the metrics hook for tool executions.
type Counter interface {
	Inc()
}

// Message is one entry of the inbound conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config parameterizes the orchestrator.
type Config struct {
	// Model is the completion model identifier, e.g. "googleai/gemini-2.5-flash".
	Model string

	// Location is the time zone used to render today's date into the system
	// prompt. Defaults to UTC.
	Location *time.Location

	// ToolCalls, when non-nil, is incremented on every lookup tool execution.
	ToolCalls Counter
}

// Orchestrator drives tool-augmented streamed completions against a fixed
// model with a hard step cap.
type Orchestrator struct {
	g      *genkit.Genkit
	model  string
	loc    *time.Location
	tool   ai.Tool
	logger *slog.Logger
}

// New registers the contact lookup tool on the genkit instance and returns
// the orchestrator. The tool resolves the owning user from the request
// context, so a single registration serves all users.
func New(g *genkit.Genkit, contacts ContactSource, cfg Config, logger *slog.Logger) *Orchestrator {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	o := &Orchestrator{
		g:      g,
		model:  cfg.Model,
		loc:    loc,
		logger: logger,
	}
	o.tool = genkit.DefineTool(g, ToolName, toolDescription,
		func(toolCtx *ai.ToolContext, _ struct{}) (string, error) {
			if cfg.ToolCalls != nil {
				cfg.ToolCalls.Inc()
			}
			userId, ok := userIdFrom(toolCtx.Context)
			if !ok {
				return UnknownUserResult, nil
			}
			found, err := contacts.ContactsByUser(toolCtx.Context, userId)
			if err != nil {
				return "", fmt.Errorf("listing contacts: %w", err)
			}
			logger.Debug("contact lookup tool executed", "user", userId, "contacts", len(found))
			return FormatContacts(found), nil
		})
	return o
}

// ConvertMessages maps the inbound history to model messages. Only the
// "user" and "assistant" roles are accepted; anything else is a client
// error, detected before the model is invoked.
func ConvertMessages(history []Message) ([]*ai.Message, error) {
	messages := make([]*ai.Message, 0, len(history))
	for i, msg := range history {
		switch msg.Role {
		case "user":
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(msg.Content)))
		case "assistant":
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(msg.Content)))
		default:
			return nil, fmt.Errorf("message %d has unsupported role %q", i, msg.Role)
		}
	}
	return messages, nil
}

// Chat runs one tool-augmented completion. userId is the resolved internal
// user id, or the empty string when the caller's identity maps to no user;
// in that case the lookup tool answers with its not-recognized sentinel.
// Chunks are relayed to onChunk as they arrive from the model; the final
// response text is returned after the stream completes. Cancelling ctx
// abandons the in-flight generation.
func (o *Orchestrator) Chat(ctx context.Context, userId string, history []*ai.Message, onChunk func(text string) error) (string, error) {
	if userId != "" {
		ctx = withUserId(ctx, userId)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(o.model),
		ai.WithSystem(fmt.Sprintf(systemPrompt, time.Now().In(o.loc).Format("Monday, January 2, 2006"))),
		ai.WithMessages(history...),
		ai.WithTools(o.tool),
		ai.WithMaxTurns(maxToolSteps),
	}
	if onChunk != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return onChunk(chunk.Text())
		}))
	}

	resp, err := genkit.Generate(ctx, o.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generating assistant response: %w", err)
	}
	return resp.Text(), nil
}

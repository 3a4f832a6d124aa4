package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/assistant"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/auth"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/store"
)

// chatRequest is the POST /api/assistant/chat body. The caller re-sends the
// full conversation history on every request; there is no server-side
// session.
type chatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

// SSE event payloads. Chunks carry incremental text as it arrives from the
// model; done carries the assembled final response; error is terminal.
type sseChunk struct {
	Text string `json:"text"`
}

type sseDone struct {
	Response string `json:"response"`
}

type sseError struct {
	Error string `json:"error"`
}

// chat streams the assistant's reply as Server-Sent Events. Validation and
// identity resolution happen before the stream starts, so those failures are
// still plain JSON responses. Once streaming has begun, failures become
// error events; content already sent is not retracted.
//
// Example REST API call:
//
//	> curl -N http://localhost:8080/api/assistant/chat --request "POST" --header "Authorization: Bearer $TOKEN" --header "Content-Type: application/json" --data '{"messages": [{"role": "user", "content": "what birthdays are coming up?"}]}'
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Messages == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": []fieldError{
			{Field: "messages", Message: "messages must be a list of {role, content} objects"},
		}})
		return
	}
	history, err := assistant.ConvertMessages(req.Messages)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": []fieldError{
			{Field: "messages", Message: err.Error()},
		}})
		return
	}

	// The caller's identity is verified by the middleware, but it may not
	// map to a synced user. That is not an error here: the lookup tool
	// answers with its not-recognized sentinel so the model can respond in
	// natural language.
	var userId string
	user, err := s.lookupUser(c.Request.Context())
	switch {
	case err == nil:
		userId = user.Id
	case errors.Is(err, auth.ErrNoIdentity):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	case errors.Is(err, store.ErrNotFound):
		// leave userId empty
	default:
		s.internalError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		s.internalError(c, errors.New("response writer does not support streaming"))
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if s.metrics != nil {
		s.metrics.AssistantStreams.Inc()
	}

	ctx := c.Request.Context()
	response, err := s.assistant.Chat(ctx, userId, history, func(text string) error {
		if text == "" {
			return nil
		}
		writeEvent(c, flusher, "chunk", sseChunk{Text: text})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			// The client went away mid-stream; abandon the generation
			// silently instead of completing it to an unread socket.
			s.logger.Debug("chat client disconnected", "error", ctx.Err())
			return
		}
		s.logger.Error("chat stream failed", "error", err)
		writeEvent(c, flusher, "error", sseError{Error: "Internal server error"})
		return
	}
	writeEvent(c, flusher, "done", sseDone{Response: response})
}

// writeEvent writes one SSE event and flushes it to the client immediately.
func writeEvent(c *gin.Context, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}

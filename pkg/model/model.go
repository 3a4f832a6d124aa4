// Package model holds the wire types of the REST API for use by Go clients.
package model

import "time"

// Contact is one person whose birthday the user tracks. The birthday is a
// calendar date split into its parts; the year is optional because people
// often know the day but not the year.
type Contact struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	BirthdayMonth int       `json:"birthdayMonth"`
	BirthdayDay   int       `json:"birthdayDay"`
	BirthdayYear  *int      `json:"birthdayYear,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ChatMessage is one entry of the conversation history sent to the assistant
// endpoint. Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /api/assistant/chat body.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatChunk is the payload of an SSE "chunk" event.
type ChatChunk struct {
	Text string `json:"text"`
}

// ChatDone is the payload of the terminal SSE "done" event.
type ChatDone struct {
	Response string `json:"response"`
}

// FieldError is one entry of a 400 response's errors list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

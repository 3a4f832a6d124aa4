package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/stretchr/testify/assert"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/log"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/testutil"
)

// fakeSource is an in-memory ContactSource recording how often the lookup
// tool reached it.
type fakeSource struct {
	contacts []model.Contact
	calls    int
}

func (f *fakeSource) ContactsByUser(ctx context.Context, userId string) ([]model.Contact, error) {
	f.calls++
	return f.contacts, nil
}

// fakeCounter satisfies the metrics hook.
type fakeCounter struct {
	count int
}

func (f *fakeCounter) Inc() { f.count++ }

// newTestOrchestrator wires a fresh genkit instance, the mock model and the
// fake contact source into an orchestrator.
func newTestOrchestrator(t *testing.T, mock *testutil.MockModel, source *fakeSource, counter *fakeCounter) *Orchestrator {
	g := genkit.Init(context.Background())
	mock.Register(g)
	return New(g, source, Config{
		Model:     testutil.ModelName,
		ToolCalls: counter,
	}, log.NewNop())
}

func TestConvertMessages(t *testing.T) {
	messages, err := ConvertMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "whose birthday is next?"},
	})
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Equal(t, "hello", messages[0].Text())
	assert.Equal(t, "hi", messages[1].Text())
}

func TestConvertMessagesRejectsUnknownRole(t *testing.T) {
	_, err := ConvertMessages([]Message{
		{Role: "system", Content: "you are a pirate"},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "system")
}

// TestChatStreamsChunks expects the streamed chunks to assemble into exactly
// the final response text.
func TestChatStreamsChunks(t *testing.T) {
	mock := testutil.NewMockModel("I did not understand that.")
	mock.AddResponse("hello", "Hi! Ask me about birthdays.")
	orchestrator := newTestOrchestrator(t, mock, &fakeSource{}, &fakeCounter{})

	history, err := ConvertMessages([]Message{{Role: "user", Content: "hello"}})
	assert.NoError(t, err)

	var chunks []string
	response, err := orchestrator.Chat(context.Background(), "u-1", history, func(text string) error {
		chunks = append(chunks, text)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "Hi! Ask me about birthdays.", response)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, response, strings.Join(chunks, ""))
}

// TestChatToolLookup expects the tool round trip: the model requests the
// lookup, the tool renders the stored contacts, and the answer carries the
// rendered line through unchanged.
func TestChatToolLookup(t *testing.T) {
	year := 1815
	source := &fakeSource{contacts: []model.Contact{
		{Name: "Ada", BirthdayMonth: 12, BirthdayDay: 10, BirthdayYear: &year},
	}}
	counter := &fakeCounter{}
	mock := testutil.NewMockModel("I did not understand that.")
	mock.AddToolResponse("birthday", ToolName, func(toolOutput string) string {
		return "Here is what I know:\n" + toolOutput
	})
	orchestrator := newTestOrchestrator(t, mock, source, counter)

	history, err := ConvertMessages([]Message{{Role: "user", Content: "whose birthday is next?"}})
	assert.NoError(t, err)

	response, err := orchestrator.Chat(context.Background(), "u-1", history, nil)
	assert.NoError(t, err)
	assert.Contains(t, response, "- Ada: December 10, 1815")
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, counter.count)
}

// TestChatNoContacts expects the no-contacts sentinel to reach the model so
// it cannot invent data.
func TestChatNoContacts(t *testing.T) {
	source := &fakeSource{}
	mock := testutil.NewMockModel("I did not understand that.")
	mock.AddToolResponse("birthday", ToolName, func(toolOutput string) string {
		return toolOutput
	})
	orchestrator := newTestOrchestrator(t, mock, source, &fakeCounter{})

	history, err := ConvertMessages([]Message{{Role: "user", Content: "any birthdays soon?"}})
	assert.NoError(t, err)

	response, err := orchestrator.Chat(context.Background(), "u-1", history, nil)
	assert.NoError(t, err)
	assert.Equal(t, NoContactsResult, response)
	assert.Equal(t, 1, source.calls)
}

// TestChatUnknownUser expects the not-recognized sentinel when no user id is
// bound, without touching the store at all.
func TestChatUnknownUser(t *testing.T) {
	source := &fakeSource{}
	mock := testutil.NewMockModel("I did not understand that.")
	mock.AddToolResponse("birthday", ToolName, func(toolOutput string) string {
		return toolOutput
	})
	orchestrator := newTestOrchestrator(t, mock, source, &fakeCounter{})

	history, err := ConvertMessages([]Message{{Role: "user", Content: "whose birthday is next?"}})
	assert.NoError(t, err)

	response, err := orchestrator.Chat(context.Background(), "", history, nil)
	assert.NoError(t, err)
	assert.Equal(t, UnknownUserResult, response)
	assert.Equal(t, 0, source.calls)
}

func TestUserIdContextRoundTrip(t *testing.T) {
	id, ok := userIdFrom(withUserId(context.Background(), "u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)

	_, ok = userIdFrom(context.Background())
	assert.False(t, ok)

	_, ok = userIdFrom(withUserId(context.Background(), ""))
	assert.False(t, ok)
}

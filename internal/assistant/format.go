package assistant

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
)

// Sentinel tool results. These are returned as regular tool output, never as
// errors, so the model can react to them in natural language. The exact
// wording matters for the model's phrasing and is pinned by tests.
const (
	// UnknownUserResult is returned when no internal user could be resolved
	// for the caller.
	UnknownUserResult = "The current user is not recognized; there are no stored contacts to show."

	// NoContactsResult is returned when the user exists but has not added
	// any contacts yet.
	NoContactsResult = "No contacts have been added yet."
)

// FormatContacts renders the user's contacts as one line per contact:
//
//	- Ada: December 10, 1815 (Notes: mathematician)
//
// The year and notes suffixes appear only when the fields are present.
func FormatContacts(contacts []model.Contact) string {
	if len(contacts) == 0 {
		return NoContactsResult
	}
	lines := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		lines = append(lines, formatContact(contact))
	}
	return strings.Join(lines, "\n")
}

func formatContact(c model.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s %d", c.Name, time.Month(c.BirthdayMonth), c.BirthdayDay)
	if c.BirthdayYear != nil {
		fmt.Fprintf(&b, ", %d", *c.BirthdayYear)
	}
	if c.Notes != nil && *c.Notes != "" {
		fmt.Fprintf(&b, " (Notes: %s)", *c.Notes)
	}
	return b.String()
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/dirk.krummacker/birthday-assistant/pkg/model"
)

const serverPort = 8080

// Demo client that exercises the whole API surface: it mints a session token,
// syncs the user, creates a contact, lists the contacts and streams one
// assistant conversation to stdout.
//
// Usage example on the command line:
//
//	> BIRTHDAY_AUTH_SECRET=changeme go run main.go
func main() {
	secret := os.Getenv("BIRTHDAY_AUTH_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "BIRTHDAY_AUTH_SECRET is required")
		os.Exit(1)
	}
	token, err := mintToken(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sendJSON(token, http.MethodPost, "/api/users/sync", nil)

	year := 1815
	created := sendJSON(token, http.MethodPost, "/api/contacts", model.Contact{
		Name:          "Ada",
		BirthdayMonth: 12,
		BirthdayDay:   10,
		BirthdayYear:  &year,
	})
	var contact model.Contact
	if err := json.Unmarshal(created, &contact); err != nil {
		fmt.Fprintln(os.Stderr, "could not unmarshal contact:", err)
		os.Exit(1)
	}
	fmt.Println("created contact", contact.Id)

	listed := sendJSON(token, http.MethodGet, "/api/contacts", nil)
	fmt.Println("contacts:", string(listed))

	streamChat(token, "Whose birthday is coming up next?")

	sendJSON(token, http.MethodDelete, "/api/contacts/"+contact.Id, nil)
}

// mintToken creates a short-lived HS256 session token for the demo identity.
func mintToken(secret string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "demo-user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func sendJSON(token, method, path string, body any) []byte {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			fmt.Fprintln(os.Stderr, "could not marshal request body:", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, fmt.Sprintf("http://localhost:%d%s", serverPort, path), reader)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not create request:", err)
		os.Exit(1)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error making http request:", err)
		os.Exit(1)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not read response body:", err)
		os.Exit(1)
	}
	if res.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "%s %s: %s: %s\n", method, path, res.Status, resBody)
		os.Exit(1)
	}
	return resBody
}

// streamChat sends one question to the assistant and prints the SSE events as
// they arrive.
func streamChat(token, question string) {
	body, err := json.Marshal(model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: question}},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not marshal chat request:", err)
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://localhost:%d/api/assistant/chat", serverPort), bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not create request:", err)
		os.Exit(1)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error making http request:", err)
		os.Exit(1)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		resBody, _ := io.ReadAll(res.Body)
		fmt.Fprintf(os.Stderr, "chat: %s: %s\n", res.Status, resBody)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(res.Body)
	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch event {
			case "chunk":
				var chunk model.ChatChunk
				if json.Unmarshal([]byte(data), &chunk) == nil {
					fmt.Print(chunk.Text)
				}
			case "done":
				fmt.Println()
			case "error":
				fmt.Fprintln(os.Stderr, "assistant error:", data)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "reading stream:", err)
	}
}

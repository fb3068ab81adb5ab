// Package chat provides the chat endpoint as an HTTP Cloud Function.
package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

// DefaultReply matches the server's default CHAT_REPLY.
const DefaultReply = "This is a hardcoded reply from the Flask backend."

// maxBodyBytes matches the server's default MAX_BODY_BYTES.
const maxBodyBytes = 1 << 20

func init() {
	functions.HTTP("Chat", chatHandler)
}

// Response is the function response.
type Response struct {
	Reply string `json:"reply"`
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeProblem(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "request body is too large")
			return
		}
		writeProblem(w, http.StatusBadRequest, "request body could not be read")
		return
	}
	if len(body) == 0 {
		writeProblem(w, http.StatusBadRequest, "request body is required")
		return
	}
	// The message field is never inspected; only the object shape is checked.
	// A JSON null decodes into a nil map.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		writeProblem(w, http.StatusBadRequest, "request body is not a JSON object")
		return
	}

	reply := os.Getenv("CHAT_REPLY")
	if reply == "" {
		reply = DefaultReply
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Reply: reply})
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Title: http.StatusText(status), Status: status, Detail: detail})
}
